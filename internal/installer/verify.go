package installer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Verify inspects projectDir against the manifest and returns one problem
// string per missing or misconfigured path. An empty slice means the install
// is complete.
func (ins *Installer) Verify(projectDir string) []string {
	var problems []string

	for _, e := range ins.man.Entries {
		dest := filepath.Join(projectDir, e.Path)
		info, err := os.Stat(dest)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: missing", e.Path))
			continue
		}
		if e.Dir != info.IsDir() {
			problems = append(problems, fmt.Sprintf("%s: expected dir=%v", e.Path, e.Dir))
			continue
		}
		if !e.Dir {
			continue
		}
		// Every staged file must be present; exec dirs need the bit set.
		err = fs.WalkDir(ins.fsys, e.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			fi, statErr := os.Stat(filepath.Join(projectDir, path))
			if statErr != nil {
				problems = append(problems, fmt.Sprintf("%s: missing", path))
				return nil
			}
			if e.Exec && fi.Mode()&0111 == 0 {
				problems = append(problems, fmt.Sprintf("%s: not executable", path))
			}
			return nil
		})
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", e.Path, err))
		}
	}

	for _, s := range ins.man.Symlinks {
		link := filepath.Join(projectDir, s.Link)
		dest, err := os.Readlink(link)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: not a symlink", s.Link))
			continue
		}
		if dest != s.Target {
			problems = append(problems, fmt.Sprintf("%s: points at %s, want %s", s.Link, dest, s.Target))
		}
	}

	if _, err := ReadReceipt(projectDir); err != nil {
		problems = append(problems, "receipt: missing (install never completed)")
	}

	return problems
}
