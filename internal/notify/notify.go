// Package notify pushes a session-stop notification to an ntfy-style server
// and optionally plays a local sound. Failures here never block the host;
// callers report them and still allow the action.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/config"
)

const publishTimeout = 5 * time.Second

// players are tried in order; the first one on PATH wins.
var players = []string{"afplay", "paplay", "aplay"}

type Notifier struct {
	cfg    config.NotifyConfig
	client *http.Client
}

func New(cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: publishTimeout},
	}
}

// Push publishes message to <server>/<topic>. Disabled config or a missing
// topic is a no-op, not an error.
func (n *Notifier) Push(ctx context.Context, message string) error {
	if !n.cfg.Enabled || n.cfg.Topic == "" {
		return nil
	}
	url := strings.TrimRight(n.cfg.ServerURL, "/") + "/" + n.cfg.Topic
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	if n.cfg.Title != "" {
		req.Header.Set("X-Title", n.cfg.Title)
	}
	req.Header.Set("X-Tags", "robot")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify %s: status %s", url, resp.Status)
	}
	return nil
}

// PlaySound plays the configured audio file with the first available
// platform player. Disabled sound is a no-op.
func (n *Notifier) PlaySound(ctx context.Context) error {
	if !n.cfg.SoundEnabled || n.cfg.AudioFile == "" {
		return nil
	}
	player, err := findPlayer()
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, player, n.cfg.AudioFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s %s: %s", player, n.cfg.AudioFile, strings.TrimSpace(string(out)))
	}
	return nil
}

func findPlayer() (string, error) {
	for _, p := range players {
		if path, err := exec.LookPath(p); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no audio player found (tried %s)", strings.Join(players, ", "))
}

// Send runs push and sound per the config booleans and joins any failures.
func (n *Notifier) Send(ctx context.Context, message string) error {
	var errs []string
	if err := n.Push(ctx, message); err != nil {
		errs = append(errs, err.Error())
	}
	if err := n.PlaySound(ctx); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %s", strings.Join(errs, "; "))
	}
	return nil
}
