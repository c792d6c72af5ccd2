// Where: internal/app/target.go
// What: Resolution of the project/environment pair commands act on.
// Why: Every AWS-facing command needs one consistent identity.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/triadops/deploykit/internal/config"
	"github.com/triadops/deploykit/internal/constants"
	"github.com/triadops/deploykit/internal/meta"
	"github.com/triadops/deploykit/internal/naming"
)

const defaultEnvironment = "staging"

// Target carries the resolved identity a command operates on.
type Target struct {
	Project     string
	Environment string
	Region      string
	Profile     string

	// Dir is the base for relative paths in the config: the directory
	// holding deploykit.yaml, or the working directory without one.
	Dir string

	// Config is the effective project configuration: built-in defaults
	// for the project, overlaid by deploykit.yaml when one was found.
	Config config.ProjectConfig

	// ConfigPath is empty when the built-in defaults are in effect.
	ConfigPath string

	// DynamoEndpoint switches table commands to a local endpoint.
	DynamoEndpoint string
}

// resolveTarget determines project, environment, region, and profile from
// flags, environment variables, deploykit.yaml, and the global config, in
// that order. An explicit --project wins over a config file written for a
// different project; the file is ignored in that case.
func resolveTarget(cli CLI, deps Dependencies) (Target, error) {
	target := Target{Dir: deps.WorkDir}

	configPath, err := locateProjectConfig(cli, deps)
	if err != nil {
		return Target{}, err
	}

	var fileCfg *config.ProjectConfig
	if configPath != "" {
		cfg, err := config.LoadProjectConfig(configPath)
		if err != nil {
			return Target{}, err
		}
		fileCfg = &cfg
	}

	project := firstNonEmpty(cli.Project, os.Getenv(constants.EnvProjectName))
	if project == "" && fileCfg != nil {
		project = fileCfg.Project
	}
	if project == "" {
		project = activeProjectFromGlobal()
	}
	if project == "" {
		return Target{}, fmt.Errorf("project name required: pass --project, set %s, or run '%s init' (known projects: %s)",
			constants.EnvProjectName, meta.AppName, knownProjectList())
	}
	target.Project = project

	if fileCfg != nil && strings.EqualFold(fileCfg.Project, project) {
		target.Config = *fileCfg
		target.ConfigPath = configPath
		target.Dir = filepath.Dir(configPath)
	} else {
		target.Config = config.DefaultProjectConfig(project)
	}

	environment := firstNonEmpty(cli.EnvFlag, os.Getenv(constants.EnvEnvironment))
	if environment == "" {
		environment = defaultEnvironment
	}
	resolved, err := resolveEnvironmentName(target.Config, environment)
	if err != nil {
		return Target{}, err
	}
	target.Environment = resolved

	target.Region = firstNonEmpty(cli.Region, os.Getenv(constants.EnvAWSRegion), target.Config.AWSRegion)
	target.Profile = firstNonEmpty(cli.Profile, os.Getenv(constants.EnvAWSProfile), target.Config.AWSProfile)
	target.DynamoEndpoint = strings.TrimSpace(os.Getenv(constants.EnvDynamoEndpoint))

	return target, nil
}

// locateProjectConfig finds deploykit.yaml. An explicit --config-file must
// exist; otherwise the search is optional and commands fall back to the
// built-in defaults.
func locateProjectConfig(cli CLI, deps Dependencies) (string, error) {
	if cli.ConfigFile != "" {
		path, err := filepath.Abs(cli.ConfigFile)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}

	dir, err := config.ResolveProjectDir(deps.WorkDir)
	if err != nil {
		return "", nil
	}
	return filepath.Join(dir, meta.ProjectConfigFile), nil
}

// resolveEnvironmentName maps any known spelling onto the configured
// environment name it abbreviates, so one pair always yields one bucket
// prefix. "stg", "stage", and "staging" all resolve to "staging".
func resolveEnvironmentName(cfg config.ProjectConfig, environment string) (string, error) {
	for _, candidate := range cfg.Environments {
		if strings.EqualFold(candidate, environment) {
			return candidate, nil
		}
	}

	if code, err := naming.EnvironmentCode(environment); err == nil {
		for _, candidate := range cfg.Environments {
			if candidateCode, err := naming.EnvironmentCode(candidate); err == nil && candidateCode == code {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("unknown environment %q for %s (configured: %s)",
		environment, cfg.Project, strings.Join(cfg.Environments, ", "))
}

func activeProjectFromGlobal() string {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return ""
	}
	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		return ""
	}
	return cfg.ActiveProject
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// resolveConfigPath anchors config-sourced relative paths at the config
// file's directory. Paths given on the command line stay relative to the
// working directory and are used as-is.
func resolveConfigPath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
