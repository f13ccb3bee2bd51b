package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// GuardConfig drives the pre-tool-use hooks. Hooks receive it by value and
// never read package state, so a guard stays a pure function of
// (event, config).
type GuardConfig struct {
	Enabled         bool     `json:"enabled"`
	ProtectedFiles  []string `json:"protected_files"`
	BlockedPatterns []string `json:"blocked_patterns"`
}

// NotifyConfig drives the session-stop hook.
type NotifyConfig struct {
	Enabled      bool   `json:"enabled"`
	ServerURL    string `json:"server_url"`
	Topic        string `json:"topic"`
	Title        string `json:"title"`
	SoundEnabled bool   `json:"sound_enabled"`
	AudioFile    string `json:"audio_file"`
}

type Config struct {
	Guard  GuardConfig  `json:"guard"`
	Notify NotifyConfig `json:"notify"`
}

func Default() Config {
	return Config{
		Guard: GuardConfig{
			Enabled: true,
			ProtectedFiles: []string{
				".env",
				".env.local",
				"CLAUDE.md",
				".mcp.json",
				"settings.json",
				"settings.local.json",
			},
			BlockedPatterns: []string{
				`git\s+push\s+.*--force`,
				`git\s+push\s+.*\s-f(\s|$)`,
				`git\s+reset\s+--hard`,
				`git\s+.*--no-verify`,
				`rm\s+-rf\s+(/|~|\.\s*$)`,
			},
		},
		Notify: NotifyConfig{
			Enabled:      false,
			ServerURL:    "https://ntfy.sh",
			Topic:        "",
			Title:        "Claude Code",
			SoundEnabled: false,
			AudioFile:    "complete.wav",
		},
	}
}

// Dir returns the config directory for a project root.
func Dir(projectDir string) string {
	return filepath.Join(projectDir, ".strategic")
}

// Path returns the config file path for a project root.
func Path(projectDir string) string {
	return filepath.Join(Dir(projectDir), "config.json")
}

// Load reads the project config, writing the default file on first use.
func Load(projectDir string) (Config, error) {
	return LoadFrom(Path(projectDir))
}

// LoadFrom reads a config from a specific path (for testing).
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if saveErr := SaveTo(path, cfg); saveErr != nil {
				return cfg, saveErr
			}
			return cfg, nil
		}
		return cfg, err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the project config.
func Save(projectDir string, cfg Config) error {
	return SaveTo(Path(projectDir), cfg)
}

// SaveTo writes a config to a specific path (for testing).
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
