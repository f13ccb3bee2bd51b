// Package installer copies the embedded staging tree into a project root.
// Steps run in manifest order and the first failure aborts the run; there is
// no rollback and no partial-success report.
package installer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/assets"
	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/logs"
)

// ErrLocked means another install run holds the project lock.
var ErrLocked = errors.New("another install is already running")

// ProgressFunc receives (step, status) where status is "installing", "done",
// or "error:<msg>".
type ProgressFunc func(step, status string)

// Receipt records a completed install run.
type Receipt struct {
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	Time      time.Time `json:"time"`
	Installed []string  `json:"installed"`
}

type Installer struct {
	fsys    fs.FS
	man     assets.Manifest
	Version string
}

// New builds an installer over the embedded staging tree.
func New() (*Installer, error) {
	man, err := assets.Load()
	if err != nil {
		return nil, err
	}
	return NewFrom(assets.FS(), man), nil
}

// NewFrom builds an installer over an arbitrary tree (for testing).
func NewFrom(fsys fs.FS, man assets.Manifest) *Installer {
	return &Installer{fsys: fsys, man: man, Version: "dev"}
}

// Manifest exposes the install steps, e.g. for sizing a progress UI.
func (ins *Installer) Manifest() assets.Manifest {
	return ins.man
}

// Run copies every manifest entry into projectDir, wires the symlinks, and
// writes the receipt. progress may be nil.
func (ins *Installer) Run(projectDir string, progress ProgressFunc) error {
	if progress == nil {
		progress = func(string, string) {}
	}

	stateDir := filepath.Join(projectDir, ".strategic")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", stateDir, err)
	}

	lock := flock.New(filepath.Join(stateDir, "install.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("install lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	defer lock.Unlock()

	log, err := logs.Open(projectDir)
	if err != nil {
		return fmt.Errorf("open install log: %w", err)
	}
	defer log.Close()

	var installed []string
	for _, e := range ins.man.Entries {
		progress(e.Path, "installing")
		log.Log(logs.LevelInfo, e.Path, "copying")
		if err := ins.copyEntry(e, projectDir); err != nil {
			log.Log(logs.LevelError, e.Path, err.Error())
			progress(e.Path, "error:"+err.Error())
			return fmt.Errorf("install %s: %w", e.Path, err)
		}
		log.Log(logs.LevelSuccess, e.Path, "done")
		progress(e.Path, "done")
		installed = append(installed, e.Path)
	}

	for _, s := range ins.man.Symlinks {
		link := filepath.Join(projectDir, s.Link)
		if err := ensureSymlink(s.Target, link); err != nil {
			log.Log(logs.LevelError, s.Link, err.Error())
			return fmt.Errorf("symlink %s: %w", s.Link, err)
		}
		log.Log(logs.LevelSuccess, s.Link, "linked -> "+s.Target)
	}

	receipt := Receipt{
		RunID:     uuid.NewString(),
		Version:   ins.Version,
		Time:      time.Now(),
		Installed: installed,
	}
	if err := writeReceipt(projectDir, receipt); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	return nil
}

func (ins *Installer) copyEntry(e assets.Entry, projectDir string) error {
	if !e.Dir {
		mode := os.FileMode(0644)
		if e.Exec {
			mode = 0755
		}
		return ins.copyFile(e.Path, filepath.Join(projectDir, e.Path), mode)
	}

	return fs.WalkDir(ins.fsys, e.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dest := filepath.Join(projectDir, path)
		if d.IsDir() {
			return os.MkdirAll(dest, 0755)
		}
		mode := os.FileMode(0644)
		if e.Exec {
			mode = 0755
		}
		return ins.copyFile(path, dest, mode)
	})
}

func (ins *Installer) copyFile(src, dest string, mode os.FileMode) error {
	data, err := fs.ReadFile(ins.fsys, src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, mode); err != nil {
		return err
	}
	// WriteFile does not touch the mode of a pre-existing file.
	return os.Chmod(dest, mode)
}

// ensureSymlink makes link point at target, replacing whatever is there.
// Already-correct links are left alone so re-runs stay quiet.
func ensureSymlink(target, link string) error {
	if dest, err := os.Readlink(link); err == nil && dest == target {
		return nil
	}
	os.RemoveAll(link)
	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return err
	}
	return os.Symlink(target, link)
}

func receiptPath(projectDir string) string {
	return filepath.Join(projectDir, ".strategic", "receipt.json")
}

func writeReceipt(projectDir string, r Receipt) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(receiptPath(projectDir), data, 0644)
}

// ReadReceipt loads the receipt of the last completed run, if any.
func ReadReceipt(projectDir string) (Receipt, error) {
	var r Receipt
	data, err := os.ReadFile(receiptPath(projectDir))
	if err != nil {
		return r, err
	}
	return r, json.Unmarshal(data, &r)
}
