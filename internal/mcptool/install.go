// Package mcptool installs the web-search MCP server: requirement checks,
// pinned release download with checksum verification, extraction, and npm
// setup. Every stage is idempotent so a failed run can be retried.
package mcptool

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	ReleaseURL    = "https://github.com/mrkrsl/web-search-mcp/releases/download/v0.3.2/web-search-mcp-v0.3.2.zip"
	ReleaseSHA256 = "1d8a2aeeda4c927fe513aea6e2f8e5775ac661ec0a15b1cab4d6d617e48dd27e"

	userAgent   = "Mozilla/5.0 (compatible; web-search-mcp-installer)"
	setupMarker = ".setup_complete"
)

// ErrChecksum means a downloaded archive did not match the pinned digest.
var ErrChecksum = errors.New("archive checksum mismatch")

// Requirement is a command that must exist at a minimum version.
type Requirement struct {
	Command    string
	MinVersion string
}

// Requirements for the npm-based setup.
var Requirements = []Requirement{
	{"node", "18.0.0"},
	{"npm", "8.0.0"},
}

// CheckRequirements verifies node and npm versions up front so the pipeline
// fails before downloading anything.
func CheckRequirements() error {
	var missing []string
	for _, r := range Requirements {
		ver, err := commandVersion(r.Command)
		if err != nil {
			missing = append(missing, fmt.Sprintf("%s not found", r.Command))
			continue
		}
		ok, err := atLeast(ver, r.MinVersion)
		if err != nil {
			missing = append(missing, fmt.Sprintf("%s: cannot parse version %q", r.Command, ver))
			continue
		}
		if !ok {
			missing = append(missing, fmt.Sprintf("%s %s (requires %s+)", r.Command, ver, r.MinVersion))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("requirements not met: %s", strings.Join(missing, "; "))
	}
	return nil
}

func commandVersion(name string) (string, error) {
	out, err := exec.Command(name, "--version").Output()
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	return strings.TrimPrefix(line, "v"), nil
}

// atLeast compares dotted version strings numerically, segment by segment.
func atLeast(have, want string) (bool, error) {
	h, err := parseVersion(have)
	if err != nil {
		return false, err
	}
	w, err := parseVersion(want)
	if err != nil {
		return false, err
	}
	for i := 0; i < 3; i++ {
		if h[i] != w[i] {
			return h[i] > w[i], nil
		}
	}
	return true, nil
}

func parseVersion(s string) ([3]int, error) {
	var v [3]int
	segs := strings.SplitN(strings.TrimSpace(s), ".", 4)
	if len(segs) == 0 || segs[0] == "" {
		return v, fmt.Errorf("empty version")
	}
	for i := 0; i < len(segs) && i < 3; i++ {
		n := 0
		if _, err := fmt.Sscanf(segs[i], "%d", &n); err != nil {
			return v, fmt.Errorf("version segment %q: %w", segs[i], err)
		}
		v[i] = n
	}
	return v, nil
}

// Pipeline drives download, extraction, and setup under ToolsDir.
type Pipeline struct {
	ToolsDir string
	URL      string
	SHA256   string
	Client   *http.Client
	Progress func(msg string)
}

func NewPipeline(toolsDir string) *Pipeline {
	return &Pipeline{
		ToolsDir: toolsDir,
		URL:      ReleaseURL,
		SHA256:   ReleaseSHA256,
		Client:   &http.Client{Timeout: 5 * time.Minute},
	}
}

func (p *Pipeline) progress(format string, args ...any) {
	if p.Progress != nil {
		p.Progress(fmt.Sprintf(format, args...))
	}
}

// Download fetches the release archive into ToolsDir and verifies it.
// An existing archive that passes verification skips the fetch; a corrupt
// one is removed and re-fetched.
func (p *Pipeline) Download(ctx context.Context) (string, error) {
	if err := os.MkdirAll(p.ToolsDir, 0755); err != nil {
		return "", err
	}
	zipPath := filepath.Join(p.ToolsDir, filepath.Base(p.URL))

	if _, err := os.Stat(zipPath); err == nil {
		if err := verifySHA256(zipPath, p.SHA256); err == nil {
			p.progress("existing archive verified, skipping download")
			return zipPath, nil
		}
		p.progress("existing archive corrupt, re-downloading")
		os.Remove(zipPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", p.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %s", p.URL, resp.Status)
	}

	f, err := os.Create(zipPath)
	if err != nil {
		return "", err
	}
	_, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("write %s: %w", zipPath, copyErr)
	}
	if closeErr != nil {
		os.Remove(zipPath)
		return "", closeErr
	}

	if err := verifySHA256(zipPath, p.SHA256); err != nil {
		os.Remove(zipPath)
		return "", err
	}
	p.progress("downloaded and verified %s", filepath.Base(zipPath))
	return zipPath, nil
}

func verifySHA256(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return fmt.Errorf("%w: got %s want %s", ErrChecksum, got, want)
	}
	return nil
}

// Extract unzips the archive into a sibling directory named after it.
// An existing directory skips extraction.
func (p *Pipeline) Extract(zipPath string) (string, error) {
	extractDir := strings.TrimSuffix(zipPath, ".zip")
	if _, err := os.Stat(extractDir); err == nil {
		p.progress("%s already extracted", filepath.Base(extractDir))
		return extractDir, nil
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		dest := filepath.Join(extractDir, f.Name)
		// Reject entries escaping the extract dir.
		if !strings.HasPrefix(dest, filepath.Clean(extractDir)+string(os.PathSeparator)) {
			return "", fmt.Errorf("archive entry %q escapes extract dir", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return "", err
		}
		if err := extractFile(f, dest); err != nil {
			return "", fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	p.progress("extracted to %s/", filepath.Base(extractDir))
	return extractDir, nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, f.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Setup runs npm install and the playwright browser install inside the
// extracted directory, then verifies the entry point. A marker file makes
// re-runs a no-op.
func (p *Pipeline) Setup(ctx context.Context, extractDir string) error {
	marker := filepath.Join(extractDir, setupMarker)
	if _, err := os.Stat(marker); err == nil {
		p.progress("setup already completed")
		return nil
	}

	steps := [][]string{
		{"npm", "install"},
		{"npx", "playwright", "install"},
	}
	for _, step := range steps {
		p.progress("running %s", strings.Join(step, " "))
		cmd := exec.CommandContext(ctx, step[0], step[1:]...)
		cmd.Dir = extractDir
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%s: %w: %s", strings.Join(step, " "), err, trimOutput(out))
		}
	}

	if _, err := os.Stat(filepath.Join(extractDir, "dist", "index.js")); err != nil {
		return fmt.Errorf("setup incomplete: dist/index.js missing")
	}

	if err := os.WriteFile(marker, nil, 0644); err != nil {
		return err
	}
	p.progress("setup complete")
	return nil
}

func trimOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
