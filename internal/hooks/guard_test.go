package hooks

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/config"
)

func guardCfg() config.GuardConfig {
	return config.GuardConfig{
		Enabled:        true,
		ProtectedFiles: []string{".env", "CLAUDE.md", "settings.json"},
		BlockedPatterns: []string{
			`git\s+push\s+.*--force`,
			`git\s+.*--no-verify`,
			`rm\s+-rf\s+/`,
		},
	}
}

func TestFileGuard(t *testing.T) {
	tests := []struct {
		name string
		path string
		deny bool
	}{
		{"protected env", "/proj/.env", true},
		{"protected nested", "/proj/sub/dir/CLAUDE.md", true},
		{"case insensitive", "/proj/claude.MD", true},
		{"settings", ".claude/settings.json", true},
		{"ordinary source file", "/proj/main.go", false},
		{"env-like but distinct", "/proj/.environment", false},
		{"empty path", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{ToolName: "Write", ToolInput: ToolInput{FilePath: tt.path}}
			d := FileGuard(ev, guardCfg())
			if d.Denied() != tt.deny {
				t.Errorf("FileGuard(%q) denied=%v, want %v (%s)", tt.path, d.Denied(), tt.deny, d.Reason)
			}
		})
	}
}

func TestFileGuardDisabledAllowsEverything(t *testing.T) {
	cfg := guardCfg()
	cfg.Enabled = false
	ev := Event{ToolInput: ToolInput{FilePath: "/proj/.env"}}
	if d := FileGuard(ev, cfg); d.Denied() {
		t.Errorf("disabled guard should allow, got deny: %s", d.Reason)
	}
}

func TestCommandGuard(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		deny bool
	}{
		{"force push", "git push origin main --force", true},
		{"no verify", "git commit --no-verify -m x", true},
		{"rm rf root", "rm -rf /", true},
		{"case insensitive", "GIT PUSH --FORCE", true},
		{"plain push", "git push origin main", false},
		{"plain commit", "git commit -m 'fix: thing'", false},
		{"empty command", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{ToolName: "Bash", ToolInput: ToolInput{Command: tt.cmd}}
			d, err := CommandGuard(ev, guardCfg())
			if err != nil {
				t.Fatalf("CommandGuard: %v", err)
			}
			if d.Denied() != tt.deny {
				t.Errorf("CommandGuard(%q) denied=%v, want %v", tt.cmd, d.Denied(), tt.deny)
			}
		})
	}
}

func TestCommandGuardInvalidPattern(t *testing.T) {
	cfg := guardCfg()
	cfg.BlockedPatterns = []string{`([unclosed`}
	ev := Event{ToolInput: ToolInput{Command: "ls"}}
	if _, err := CommandGuard(ev, cfg); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestCommandGuardDisabled(t *testing.T) {
	cfg := guardCfg()
	cfg.Enabled = false
	ev := Event{ToolInput: ToolInput{Command: "git push --force"}}
	d, err := CommandGuard(ev, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if d.Denied() {
		t.Error("disabled guard should allow")
	}
}

func TestReadEvent(t *testing.T) {
	in := `{"session_id":"abc","tool_name":"Write","tool_input":{"file_path":"/p/.env"}}`
	ev, err := ReadEvent(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadEvent: %v", err)
	}
	if ev.SessionID != "abc" || ev.ToolName != "Write" || ev.ToolInput.FilePath != "/p/.env" {
		t.Errorf("event mismatch: %+v", ev)
	}
}

func TestReadEventMalformed(t *testing.T) {
	if _, err := ReadEvent(strings.NewReader("not json")); err == nil {
		t.Fatal("expected error for malformed event")
	}
}

func TestDecisionWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Deny("BLOCKED: nope").Write(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"hookSpecificOutput"`) ||
		!strings.Contains(out, `"permissionDecision":"deny"`) ||
		!strings.Contains(out, "BLOCKED: nope") {
		t.Errorf("unexpected envelope: %s", out)
	}

	buf.Reset()
	if err := Allow().Write(&buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "permissionDecisionReason") {
		t.Errorf("allow should omit reason: %s", buf.String())
	}
}
