package hooks

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/config"
)

// FileGuard checks a Write/Edit event against the protected-file list.
// Matching is on the basename, case-insensitive. A disabled guard or an
// event without a file path allows unconditionally.
func FileGuard(ev Event, cfg config.GuardConfig) Decision {
	if !cfg.Enabled || ev.ToolInput.FilePath == "" {
		return Allow()
	}
	base := filepath.Base(ev.ToolInput.FilePath)
	for _, name := range cfg.ProtectedFiles {
		if strings.EqualFold(base, name) {
			return Deny(fmt.Sprintf("BLOCKED: writing to %s is prohibited (protected file)", base))
		}
	}
	return Allow()
}

// CommandGuard checks a Bash event against the blocked command patterns.
// Patterns are case-insensitive regular expressions; an invalid pattern
// fails the check loudly rather than silently allowing.
func CommandGuard(ev Event, cfg config.GuardConfig) (Decision, error) {
	if !cfg.Enabled || ev.ToolInput.Command == "" {
		return Allow(), nil
	}
	for _, pat := range cfg.BlockedPatterns {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return Decision{}, fmt.Errorf("blocked pattern %q: %w", pat, err)
		}
		if re.MatchString(ev.ToolInput.Command) {
			return Deny(fmt.Sprintf("BLOCKED: command matches prohibited pattern %q", pat)), nil
		}
	}
	return Allow(), nil
}
