package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.DefaultView != "summary" {
		t.Errorf("expected default view 'summary', got %q", cfg.UI.DefaultView)
	}
	if cfg.UI.TopK != 12 {
		t.Errorf("expected top_k 12, got %d", cfg.UI.TopK)
	}
	if len(cfg.Sources.Dataset) < 2 || len(cfg.Sources.Report) < 2 {
		t.Errorf("expected at least two candidates per artifact, got %v / %v", cfg.Sources.Dataset, cfg.Sources.Report)
	}
	if !cfg.WatchEnabled() {
		t.Error("expected watch enabled by default")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	t.Setenv(BaseEnvVar, "")
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.DefaultView != "summary" {
		t.Errorf("expected default config, got view %q", cfg.UI.DefaultView)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	t.Setenv(BaseEnvVar, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
sources:
  base: https://example.org/polar/
  dataset:
    - data/markov_results.json
  timeout: 3s
ui:
  default_pole: liberal
  default_view: top
  top_k: 5
watch: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Sources.Base != "https://example.org/polar/" {
		t.Errorf("base = %q", cfg.Sources.Base)
	}
	if len(cfg.Sources.Dataset) != 1 {
		t.Errorf("dataset candidates = %v, want 1 entry", cfg.Sources.Dataset)
	}
	if len(cfg.Sources.Report) == 0 {
		t.Error("report candidates should fall back to defaults")
	}
	if cfg.Sources.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.Sources.Timeout)
	}
	if cfg.UI.DefaultPole != "liberal" || cfg.UI.DefaultView != "top" || cfg.UI.TopK != 5 {
		t.Errorf("unexpected UI config: %+v", cfg.UI)
	}
	if cfg.WatchEnabled() {
		t.Error("watch should be disabled")
	}
}

func TestLoadFrom_InvalidViewFallsBack(t *testing.T) {
	t.Setenv(BaseEnvVar, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ui:\n  default_view: heatmap\n  top_k: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.UI.DefaultView != "summary" || cfg.UI.TopK != 12 {
		t.Errorf("expected fallback to defaults, got %+v", cfg.UI)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sources: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverridesBase(t *testing.T) {
	t.Setenv(BaseEnvVar, "/srv/polar")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sources.Base != "/srv/polar" {
		t.Errorf("base = %q, want /srv/polar", cfg.Sources.Base)
	}
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv(BaseEnvVar, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.UI.TopK = 7

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.UI.TopK != 7 {
		t.Errorf("TopK = %d, want 7", got.UI.TopK)
	}
}

func TestConfigDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigPath(); got != filepath.Join("/tmp/xdg", "polarview", "config.yaml") {
		t.Errorf("ConfigPath = %q", got)
	}
}
