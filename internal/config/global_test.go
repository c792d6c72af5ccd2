// Where: internal/config/global_test.go
// What: Tests for global config helpers.
// Why: Ensure global config round-trips correctly.
package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestGlobalConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := GlobalConfig{
		Version:       1,
		ActiveProject: "people-cards",
		Projects: map[string]ProjectEntry{
			"people-cards": {
				Path:        "/path/to/people-cards",
				Environment: "staging",
				LastUsed:    "2026-08-20T23:45:00+09:00",
			},
		},
	}

	if err := SaveGlobalConfig(path, cfg); err != nil {
		t.Fatalf("save global config: %v", err)
	}

	loaded, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("load global config: %v", err)
	}

	if !reflect.DeepEqual(cfg, loaded) {
		t.Fatalf("config mismatch: expected %#v, got %#v", cfg, loaded)
	}
}

func TestGlobalConfigPathHonorsOverride(t *testing.T) {
	baseDir := t.TempDir()
	overridePath := filepath.Join(baseDir, "custom", "config.yaml")
	t.Setenv("DEPLOYKIT_CONFIG_PATH", overridePath)

	got, err := GlobalConfigPath()
	if err != nil {
		t.Fatalf("global config path: %v", err)
	}
	if got != overridePath {
		t.Fatalf("unexpected config path: %s", got)
	}
}

func TestGlobalConfigPathHonorsConfigHome(t *testing.T) {
	baseDir := t.TempDir()
	t.Setenv("DEPLOYKIT_CONFIG_PATH", "")
	t.Setenv("DEPLOYKIT_CONFIG_HOME", baseDir)

	got, err := GlobalConfigPath()
	if err != nil {
		t.Fatalf("global config path: %v", err)
	}
	if got != filepath.Join(baseDir, "config.yaml") {
		t.Fatalf("unexpected config path: %s", got)
	}
}

func TestEnsureGlobalConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv("DEPLOYKIT_CONFIG_PATH", path)

	if err := EnsureGlobalConfig(); err != nil {
		t.Fatalf("ensure global config: %v", err)
	}

	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("load global config: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("unexpected version: %d", cfg.Version)
	}

	// A second call must leave the existing file alone.
	if err := EnsureGlobalConfig(); err != nil {
		t.Fatalf("ensure global config again: %v", err)
	}
}
