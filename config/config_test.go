package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport != "ollama" {
		t.Errorf("expected default transport ollama, got %q", cfg.Transport)
	}
	if cfg.BaseURL != "http://localhost:11434" {
		t.Errorf("unexpected default base URL: %q", cfg.BaseURL)
	}
	if cfg.TimeoutS != 180 || cfg.KeepAliveS != 300 {
		t.Errorf("unexpected default timeouts: %v / %v", cfg.TimeoutS, cfg.KeepAliveS)
	}
	if cfg.MaxTurns != 6 {
		t.Errorf("expected default max_turns 6, got %d", cfg.MaxTurns)
	}
	if cfg.ProfilesDir != "profiles" {
		t.Errorf("expected default profiles_dir, got %q", cfg.ProfilesDir)
	}
}

func TestLoadConfigProjectOverridesUser(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)

	writeConfig(t, home, "transport: openai\na_model: gpt-4o-mini\nmax_turns: 10\n")
	writeConfig(t, project, "a_model: llama3.2:latest\n")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// project file overrides the field it sets
	if cfg.AModel != "llama3.2:latest" {
		t.Errorf("expected project a_model to win, got %q", cfg.AModel)
	}
	// user-level values it does not set survive
	if cfg.Transport != "openai" {
		t.Errorf("expected user transport to survive, got %q", cfg.Transport)
	}
	if cfg.MaxTurns != 10 {
		t.Errorf("expected user max_turns to survive, got %d", cfg.MaxTurns)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	project := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(project)

	writeConfig(t, project, "transport: [unclosed\n")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".choom")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
