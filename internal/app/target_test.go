// Where: internal/app/target_test.go
// What: Tests for target resolution.
// Why: Flag/env/file/global precedence must stay predictable.
package app

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/triadops/deploykit/internal/config"
)

func TestResolveTargetFromConfigFile(t *testing.T) {
	setupEnv(t)
	workDir := t.TempDir()
	path := writeProjectFixture(t, workDir, "people-cards")

	target, err := resolveTarget(CLI{}, Dependencies{WorkDir: workDir})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Project != "people-cards" {
		t.Fatalf("expected people-cards, got %q", target.Project)
	}
	if target.Environment != "staging" {
		t.Fatalf("expected default staging, got %q", target.Environment)
	}
	if target.ConfigPath != path {
		t.Fatalf("expected config path %q, got %q", path, target.ConfigPath)
	}
	if target.Region != "us-west-1" {
		t.Fatalf("expected default region, got %q", target.Region)
	}
	if len(target.Config.Tables) == 0 {
		t.Fatalf("expected per-project table defaults to apply")
	}
}

func TestResolveTargetFlagBeatsEnvAndFile(t *testing.T) {
	setupEnv(t)
	workDir := t.TempDir()
	writeProjectFixture(t, workDir, "people-cards")
	t.Setenv("PROJECT_NAME", "media-register")

	target, err := resolveTarget(CLI{Project: "fraud-or-not"}, Dependencies{WorkDir: workDir})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Project != "fraud-or-not" {
		t.Fatalf("expected fraud-or-not, got %q", target.Project)
	}
	if target.ConfigPath != "" {
		t.Fatalf("expected mismatched config file to be ignored, got %q", target.ConfigPath)
	}
	if target.Config.Project != "fraud-or-not" {
		t.Fatalf("expected built-in defaults for fraud-or-not, got %q", target.Config.Project)
	}
}

func TestResolveTargetProjectFromEnvVar(t *testing.T) {
	setupEnv(t)
	t.Setenv("PROJECT_NAME", "media-register")

	target, err := resolveTarget(CLI{}, Dependencies{WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Project != "media-register" {
		t.Fatalf("expected media-register, got %q", target.Project)
	}
	if target.ConfigPath != "" {
		t.Fatalf("expected no config file, got %q", target.ConfigPath)
	}
}

func TestResolveTargetEnvironmentSpellings(t *testing.T) {
	setupEnv(t)
	workDir := t.TempDir()
	writeProjectFixture(t, workDir, "people-cards")
	deps := Dependencies{WorkDir: workDir}

	cases := map[string]string{
		"stg":         "staging",
		"stage":       "staging",
		"staging":     "staging",
		"STAGING":     "staging",
		"prd":         "production",
		"prod":        "production",
		"production":  "production",
		"dev":         "development",
		"development": "development",
	}
	for spelling, want := range cases {
		target, err := resolveTarget(CLI{EnvFlag: spelling}, deps)
		if err != nil {
			t.Fatalf("%s: %v", spelling, err)
		}
		if target.Environment != want {
			t.Fatalf("%s: expected %q, got %q", spelling, want, target.Environment)
		}
	}
}

func TestResolveTargetUnknownEnvironment(t *testing.T) {
	setupEnv(t)
	workDir := t.TempDir()
	writeProjectFixture(t, workDir, "people-cards")

	_, err := resolveTarget(CLI{EnvFlag: "qa"}, Dependencies{WorkDir: workDir})
	if err == nil {
		t.Fatalf("expected error for unknown environment")
	}
	if !strings.Contains(err.Error(), "unknown environment") {
		t.Fatalf("expected unknown environment error, got %v", err)
	}
}

func TestResolveTargetRegionPrecedence(t *testing.T) {
	setupEnv(t)
	workDir := t.TempDir()
	writeConfigFixture(t, workDir, "project: people-cards\naws_region: eu-central-1\n")
	deps := Dependencies{WorkDir: workDir}

	target, err := resolveTarget(CLI{Region: "us-east-2"}, deps)
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Region != "us-east-2" {
		t.Fatalf("expected flag region, got %q", target.Region)
	}

	t.Setenv("AWS_REGION", "ap-south-1")
	target, err = resolveTarget(CLI{}, deps)
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Region != "ap-south-1" {
		t.Fatalf("expected env region, got %q", target.Region)
	}

	t.Setenv("AWS_REGION", "")
	target, err = resolveTarget(CLI{}, deps)
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Region != "eu-central-1" {
		t.Fatalf("expected file region, got %q", target.Region)
	}
}

func TestResolveTargetExplicitConfigFile(t *testing.T) {
	setupEnv(t)
	cfgDir := t.TempDir()
	path := writeProjectFixture(t, cfgDir, "media-register")

	target, err := resolveTarget(CLI{ConfigFile: path}, Dependencies{WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Project != "media-register" {
		t.Fatalf("expected media-register, got %q", target.Project)
	}
	if target.Dir != cfgDir {
		t.Fatalf("expected config dir %q, got %q", cfgDir, target.Dir)
	}
}

func TestResolveTargetExplicitConfigFileMissing(t *testing.T) {
	setupEnv(t)

	_, err := resolveTarget(
		CLI{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")},
		Dependencies{WorkDir: t.TempDir()},
	)
	if err == nil {
		t.Fatalf("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "config file") {
		t.Fatalf("expected config file error, got %v", err)
	}
}

func TestResolveTargetActiveProjectFromGlobal(t *testing.T) {
	setupEnv(t)
	projectDir := t.TempDir()
	path := writeProjectFixture(t, projectDir, "fraud-or-not")

	globalPath, err := config.GlobalConfigPath()
	if err != nil {
		t.Fatalf("global config path: %v", err)
	}
	global := config.DefaultGlobalConfig()
	global.ActiveProject = "fraud-or-not"
	global.Projects = map[string]config.ProjectEntry{
		"fraud-or-not": {Path: projectDir, LastUsed: "2026-01-01T00:00:00Z"},
	}
	if err := config.SaveGlobalConfig(globalPath, global); err != nil {
		t.Fatalf("save global config: %v", err)
	}

	target, err := resolveTarget(CLI{}, Dependencies{WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Project != "fraud-or-not" {
		t.Fatalf("expected fraud-or-not, got %q", target.Project)
	}
	if target.ConfigPath != path {
		t.Fatalf("expected registered config path %q, got %q", path, target.ConfigPath)
	}
}

func TestResolveEnvironmentNameRejectsShortConfigured(t *testing.T) {
	cfg := config.ProjectConfig{Project: "demo", Environments: []string{"qa"}}
	if _, err := resolveEnvironmentName(cfg, "qa"); err != nil {
		t.Fatalf("exact match should pass: %v", err)
	}
	if _, err := resolveEnvironmentName(cfg, "q"); err == nil {
		t.Fatalf("expected error for unknown spelling")
	}
}
