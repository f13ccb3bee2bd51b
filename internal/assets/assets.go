// Package assets bundles the staging tree that `strategic install` copies
// into a consumer project, together with the manifest describing the copy
// order.
package assets

import (
	"embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

//go:embed all:staging
var stagingFS embed.FS

// Entry is a single copy step. Path is relative to both the staging root and
// the project root. Exec marks shell scripts that get 0755 after copy.
type Entry struct {
	Path string `yaml:"path"`
	Dir  bool   `yaml:"dir"`
	Exec bool   `yaml:"exec"`
}

// Symlink wires a project path to an installed subtree, e.g.
// .claude/commands -> ../.strategic/commands.
type Symlink struct {
	Link   string `yaml:"link"`
	Target string `yaml:"target"`
}

// Manifest lists the copy steps in install order plus the symlink wiring
// applied after the last copy.
type Manifest struct {
	Entries  []Entry   `yaml:"entries"`
	Symlinks []Symlink `yaml:"symlinks"`
}

// FS returns the embedded staging tree rooted at its top level, so entry
// paths resolve directly.
func FS() fs.FS {
	sub, err := fs.Sub(stagingFS, "staging")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load parses the embedded manifest and checks every entry against the
// staging tree.
func Load() (Manifest, error) {
	return LoadFS(FS())
}

// LoadFS parses manifest.yaml from fsys. Split out so tests can run the
// installer against fixture trees.
func LoadFS(fsys fs.FS) (Manifest, error) {
	data, err := fs.ReadFile(fsys, "manifest.yaml")
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.validate(fsys); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m Manifest) validate(fsys fs.FS) error {
	if len(m.Entries) == 0 {
		return fmt.Errorf("manifest has no entries")
	}
	for _, e := range m.Entries {
		if e.Path == "" {
			return fmt.Errorf("manifest entry with empty path")
		}
		info, err := fs.Stat(fsys, e.Path)
		if err != nil {
			return fmt.Errorf("manifest entry %s: %w", e.Path, err)
		}
		if e.Dir != info.IsDir() {
			return fmt.Errorf("manifest entry %s: dir flag does not match staging tree", e.Path)
		}
	}
	for _, s := range m.Symlinks {
		if s.Link == "" || s.Target == "" {
			return fmt.Errorf("manifest symlink with empty link or target")
		}
	}
	return nil
}

// Paths returns the destination paths in install order. Used by verify and
// by the progress UI to size the step list.
func (m Manifest) Paths() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Path
	}
	return out
}
