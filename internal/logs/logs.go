// Package logs keeps an append-only record of install runs at
// .strategic/install.log in the project.
package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

var levelTag = [...]string{"INFO", " OK ", "WARN", "ERR "}

type Entry struct {
	Time    time.Time
	Level   Level
	Step    string
	Message string
}

// InstallLog appends entries to the project's install log file.
type InstallLog struct {
	file *os.File
}

func logPath(projectDir string) string {
	return filepath.Join(projectDir, ".strategic", "install.log")
}

// Open creates or appends to the install log, creating .strategic/ if needed.
func Open(projectDir string) (*InstallLog, error) {
	path := logPath(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &InstallLog{file: f}, nil
}

func (l *InstallLog) Log(level Level, step, message string) {
	if l == nil || l.file == nil {
		return
	}
	tag := "INFO"
	if int(level) < len(levelTag) {
		tag = levelTag[level]
	}
	msg := strings.ReplaceAll(message, "\n", " ")
	line := fmt.Sprintf("%s [%s] %s: %s\n",
		time.Now().Format("2006-01-02 15:04:05"), tag, step, msg)
	l.file.WriteString(line)
}

func (l *InstallLog) Close() {
	if l != nil && l.file != nil {
		l.file.Close()
	}
}

// Read parses the project's install log. A missing file yields nil.
func Read(projectDir string) []Entry {
	data, err := os.ReadFile(logPath(projectDir))
	if err != nil {
		return nil
	}
	var entries []Entry
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		e, ok := parseLine(line)
		if ok {
			entries = append(entries, e)
		}
	}
	return entries
}

func parseLine(line string) (Entry, bool) {
	// Format: 2006-01-02 15:04:05 [TAG ] step: message
	var e Entry
	if len(line) < 27 {
		return e, false
	}
	t, err := time.Parse("2006-01-02 15:04:05", line[:19])
	if err != nil {
		return e, false
	}
	e.Time = t

	rest := line[20:]
	if !strings.HasPrefix(rest, "[") {
		return e, false
	}
	end := strings.Index(rest, "]")
	if end < 0 {
		return e, false
	}
	switch strings.TrimSpace(rest[1:end]) {
	case "OK":
		e.Level = LevelSuccess
	case "WARN":
		e.Level = LevelWarn
	case "ERR":
		e.Level = LevelError
	default:
		e.Level = LevelInfo
	}

	rest = strings.TrimPrefix(rest[end+1:], " ")
	colon := strings.Index(rest, ": ")
	if colon < 0 {
		e.Message = rest
		return e, true
	}
	e.Step = rest[:colon]
	e.Message = rest[colon+2:]
	return e, true
}
