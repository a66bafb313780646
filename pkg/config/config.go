// Package config handles loading and saving polarview configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/polarview/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BaseEnvVar overrides Sources.Base when set.
const BaseEnvVar = "POLARVIEW_BASE"

// View names accepted by UIConfig.DefaultView.
var validViews = []string{"summary", "matrix", "top"}

// SourcesConfig lists where the dataset and report artifacts may live.
// Candidates are tried in order; relative entries are resolved against Base.
type SourcesConfig struct {
	Base    string        `yaml:"base,omitempty"` // URL or directory
	Dataset []string      `yaml:"dataset,omitempty"`
	Report  []string      `yaml:"report,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"` // per candidate fetch
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultPole string `yaml:"default_pole,omitempty"`
	DefaultView string `yaml:"default_view,omitempty"` // summary, matrix, top
	TopK        int    `yaml:"top_k,omitempty"`
}

// Config is the top-level configuration for polarview.
type Config struct {
	Sources SourcesConfig `yaml:"sources,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
	Watch   *bool         `yaml:"watch,omitempty"` // auto-refresh local artifacts
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Sources: SourcesConfig{
			Dataset: []string{
				"data/markov_results.json",
				"docs/data/markov_results.json",
				"data/reports/markov/markov_results.json",
			},
			Report: []string{
				"data/report.md",
				"docs/data/report.md",
				"data/reports/report.md",
			},
			Timeout: 10 * time.Second,
		},
		UI: UIConfig{
			DefaultPole: "conservative",
			DefaultView: "summary",
			TopK:        12,
		},
	}
}

// WatchEnabled reports whether local artifacts should be watched. Defaults to true.
func (c Config) WatchEnabled() bool {
	return c.Watch == nil || *c.Watch
}

// ConfigDir returns the XDG config directory for polarview.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "polarview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "polarview")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return applyEnv(DefaultConfig()), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	defaults := DefaultConfig()
	if len(cfg.Sources.Dataset) == 0 {
		cfg.Sources.Dataset = defaults.Sources.Dataset
	}
	if len(cfg.Sources.Report) == 0 {
		cfg.Sources.Report = defaults.Sources.Report
	}
	if cfg.Sources.Timeout <= 0 {
		cfg.Sources.Timeout = defaults.Sources.Timeout
	}
	if cfg.UI.TopK <= 0 {
		cfg.UI.TopK = defaults.UI.TopK
	}
	if !isValidView(cfg.UI.DefaultView) {
		cfg.UI.DefaultView = defaults.UI.DefaultView
	}
	cfg.Sources.Base = expandHome(cfg.Sources.Base)

	return applyEnv(cfg), nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func applyEnv(cfg Config) Config {
	if base := strings.TrimSpace(os.Getenv(BaseEnvVar)); base != "" {
		cfg.Sources.Base = expandHome(base)
	}
	return cfg
}

func isValidView(v string) bool {
	for _, ok := range validViews {
		if v == ok {
			return true
		}
	}
	return false
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
