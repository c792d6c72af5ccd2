// Where: internal/app/init.go
// What: Interactive project setup.
// Why: Register a project and scaffold its config in one guided pass.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/triadops/deploykit/internal/config"
	"github.com/triadops/deploykit/internal/meta"
	"github.com/triadops/deploykit/internal/naming"
	"github.com/triadops/deploykit/internal/ui"
)

var regionSuggestions = []string{"us-west-1", "us-east-1", "eu-west-1"}

func runInitWizard(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Prompter == nil {
		fmt.Fprintln(out, "init: not implemented")
		return 1
	}

	project := firstNonEmpty(cli.Project)
	if project == "" {
		answer, err := deps.Prompter.Input("Project name", naming.KnownProjects())
		if err != nil {
			return exitWithError(out, err)
		}
		project = firstNonEmpty(answer)
	}
	if project == "" {
		return exitWithError(out, fmt.Errorf("project name required (known projects: %s)", knownProjectList()))
	}
	if _, err := naming.ProjectCode(project); err != nil {
		return exitWithError(out, err)
	}

	environment := firstNonEmpty(cli.EnvFlag)
	if environment == "" {
		answer, err := deps.Prompter.Select("Default environment", config.DefaultEnvironments)
		if err != nil {
			return exitWithError(out, err)
		}
		environment = answer
	}
	if environment != "" {
		resolved, err := resolveEnvironmentName(config.DefaultProjectConfig(project), environment)
		if err != nil {
			return exitWithError(out, err)
		}
		environment = resolved
	}

	region := firstNonEmpty(cli.Region)
	if region == "" {
		answer, err := deps.Prompter.Input("AWS region", regionSuggestions)
		if err != nil {
			return exitWithError(out, err)
		}
		region = firstNonEmpty(answer)
	}

	console := ui.New(out)
	configPath := filepath.Join(deps.WorkDir, meta.ProjectConfigFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultProjectConfig(project)
		if region != "" {
			cfg.AWSRegion = region
		}
		rendered, err := config.RenderProjectScaffold(cfg)
		if err != nil {
			return exitWithError(out, err)
		}
		if err := os.WriteFile(configPath, []byte(rendered), 0o644); err != nil {
			return exitWithError(out, err)
		}
		console.Success(fmt.Sprintf("Wrote %s", configPath))
	} else {
		console.Info(fmt.Sprintf("Keeping existing %s", configPath))
	}

	globalPath, err := config.GlobalConfigPath()
	if err != nil {
		return exitWithError(out, err)
	}
	global, err := config.LoadGlobalConfig(globalPath)
	if err != nil {
		return exitWithError(out, err)
	}
	if global.Projects == nil {
		global.Projects = map[string]config.ProjectEntry{}
	}
	global.ActiveProject = project
	global.Projects[project] = config.ProjectEntry{
		Path:        deps.WorkDir,
		Environment: environment,
		LastUsed:    deps.Now().UTC().Format(time.RFC3339),
	}
	if err := config.SaveGlobalConfig(globalPath, global); err != nil {
		return exitWithError(out, err)
	}

	console.Success(fmt.Sprintf("Registered %s as the active project", project))
	console.Item("Environment", environment)
	if region != "" {
		console.Item("Region", region)
	}
	return 0
}
