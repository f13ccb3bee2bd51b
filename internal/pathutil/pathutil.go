package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// AugmentPath probes for well-known tool directories and adds them to the
// process PATH. Call once at startup so exec.Command finds node, npm, npx
// and the audio players regardless of how the process was launched; hooks
// in particular inherit a minimal environment from the host.
func AugmentPath() {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home == "" {
		return
	}

	extra := []string{
		filepath.Join(home, "bin"),
		filepath.Join(home, ".local", "bin"),
		"/usr/local/bin",
		"/usr/bin",
		"/opt/homebrew/bin",
		"/snap/bin",
	}

	// nvm installs live under versioned dirs; take the latest one.
	nvmDir := filepath.Join(home, ".nvm", "versions", "node")
	if entries, err := os.ReadDir(nvmDir); err == nil {
		for i := len(entries) - 1; i >= 0; i-- {
			if !entries[i].IsDir() {
				continue
			}
			binDir := filepath.Join(nvmDir, entries[i].Name(), "bin")
			if _, err := os.Stat(binDir); err == nil {
				extra = append(extra, binDir)
				break
			}
		}
	}

	current := os.Getenv("PATH")
	existing := make(map[string]bool)
	for _, p := range strings.Split(current, ":") {
		existing[p] = true
	}

	var toAdd []string
	for _, p := range extra {
		if existing[p] {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			toAdd = append(toAdd, p)
		}
	}

	if len(toAdd) > 0 {
		os.Setenv("PATH", current+":"+strings.Join(toAdd, ":"))
	}
}
