package installer

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/gofrs/flock"

	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/assets"
)

func fixtureFS() fstest.MapFS {
	return fstest.MapFS{
		"scripts/hello.sh": {Data: []byte("#!/bin/bash\necho hello\n")},
		"scripts/bye.sh":   {Data: []byte("#!/bin/bash\necho bye\n")},
		".gitignore":       {Data: []byte(".env\n")},
		"docs/readme.md":   {Data: []byte("# docs\n")},
	}
}

func fixtureManifest() assets.Manifest {
	return assets.Manifest{
		Entries: []assets.Entry{
			{Path: "scripts", Dir: true, Exec: true},
			{Path: ".gitignore"},
			{Path: "docs", Dir: true},
		},
		Symlinks: []assets.Symlink{
			{Link: "linked-docs", Target: "docs"},
		},
	}
}

func TestRunCopiesEverything(t *testing.T) {
	dir := t.TempDir()
	fsys := fixtureFS()
	ins := NewFrom(fsys, fixtureManifest())

	if err := ins.Run(dir, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Byte-identical copies.
	for src, f := range fsys {
		got, err := os.ReadFile(filepath.Join(dir, src))
		if err != nil {
			t.Fatalf("read %s: %v", src, err)
		}
		if !bytes.Equal(got, f.Data) {
			t.Errorf("%s: content differs from source", src)
		}
	}

	// Scripts are executable, non-exec entries are not.
	for _, name := range []string{"scripts/hello.sh", "scripts/bye.sh"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if fi.Mode()&0111 == 0 {
			t.Errorf("%s should be executable, mode %v", name, fi.Mode())
		}
	}
	fi, err := os.Stat(filepath.Join(dir, "docs/readme.md"))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&0111 != 0 {
		t.Errorf("docs/readme.md should not be executable, mode %v", fi.Mode())
	}

	// Symlink wired.
	dest, err := os.Readlink(filepath.Join(dir, "linked-docs"))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if dest != "docs" {
		t.Errorf("symlink target = %s, want docs", dest)
	}

	// Receipt written.
	r, err := ReadReceipt(dir)
	if err != nil {
		t.Fatalf("ReadReceipt: %v", err)
	}
	if r.RunID == "" || len(r.Installed) != 3 {
		t.Errorf("receipt incomplete: %+v", r)
	}
}

func TestRunAbortsOnFirstMissingSource(t *testing.T) {
	dir := t.TempDir()
	man := assets.Manifest{
		Entries: []assets.Entry{
			{Path: ".gitignore"},
			{Path: "nope.txt"},
			{Path: "docs", Dir: true},
		},
	}
	ins := NewFrom(fixtureFS(), man)

	var statuses []string
	err := ins.Run(dir, func(step, status string) {
		statuses = append(statuses, step+"="+status)
	})
	if err == nil {
		t.Fatal("expected error for missing source")
	}

	// First step landed, failing step did not, later steps never ran.
	if _, err := os.Stat(filepath.Join(dir, ".gitignore")); err != nil {
		t.Error(".gitignore should have been copied before the failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "docs")); !os.IsNotExist(err) {
		t.Error("docs should not have been copied after the failure")
	}
	last := statuses[len(statuses)-1]
	if last[:len("nope.txt=error:")] != "nope.txt=error:" {
		t.Errorf("last progress status = %s, want nope.txt=error:*", last)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	ins := NewFrom(fixtureFS(), fixtureManifest())

	if err := ins.Run(dir, nil); err != nil {
		t.Fatal(err)
	}
	first, err := ReadReceipt(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := ins.Run(dir, nil); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second, err := ReadReceipt(dir)
	if err != nil {
		t.Fatal(err)
	}
	if first.RunID == second.RunID {
		t.Error("re-run should produce a fresh receipt")
	}
	if len(ins.Verify(dir)) != 0 {
		t.Errorf("verify after re-run: %v", ins.Verify(dir))
	}
}

func TestRunRefreshesModifiedFiles(t *testing.T) {
	dir := t.TempDir()
	ins := NewFrom(fixtureFS(), fixtureManifest())
	if err := ins.Run(dir, nil); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(path, []byte("local edit\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ins.Run(dir, nil); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != ".env\n" {
		t.Errorf("re-run should restore staged content, got %q", got)
	}
}

func TestVerifyReportsProblems(t *testing.T) {
	dir := t.TempDir()
	ins := NewFrom(fixtureFS(), fixtureManifest())
	if err := ins.Run(dir, nil); err != nil {
		t.Fatal(err)
	}

	if problems := ins.Verify(dir); len(problems) != 0 {
		t.Fatalf("fresh install should verify clean: %v", problems)
	}

	os.Remove(filepath.Join(dir, "scripts", "bye.sh"))
	os.Chmod(filepath.Join(dir, "scripts", "hello.sh"), 0644)

	problems := ins.Verify(dir)
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", problems)
	}
}

func TestVerifyEmptyDir(t *testing.T) {
	ins := NewFrom(fixtureFS(), fixtureManifest())
	if problems := ins.Verify(t.TempDir()); len(problems) == 0 {
		t.Fatal("empty dir should not verify")
	}
}

func TestRunFailsWhenLocked(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".strategic"), 0755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(filepath.Join(dir, ".strategic", "install.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take fixture lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	ins := NewFrom(fixtureFS(), fixtureManifest())
	if err := ins.Run(dir, nil); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunEmbeddedStaging(t *testing.T) {
	ins, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dir := t.TempDir()
	if err := ins.Run(dir, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if problems := ins.Verify(dir); len(problems) != 0 {
		t.Fatalf("embedded install should verify clean: %v", problems)
	}

	// Spot-check byte fidelity against the embedded tree.
	fsys := assets.FS()
	for _, name := range []string{".gitignore", ".claude/settings.json", "Makefile"} {
		want, err := fs.ReadFile(fsys, name)
		if err != nil {
			t.Fatal(err)
		}
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s differs from staged source", name)
		}
	}
}
