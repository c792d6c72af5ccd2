// Where: internal/app/config_cmd.go
// What: Project configuration commands: show, validate, init.
// Why: Inspect and scaffold deploykit.yaml without hand-editing blind.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/triadops/deploykit/internal/config"
	"github.com/triadops/deploykit/internal/constants"
	"github.com/triadops/deploykit/internal/meta"
	"github.com/triadops/deploykit/internal/ui"
)

type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" help:"Print the effective project configuration"`
	Validate ConfigValidateCmd `cmd:"" help:"Schema-check deploykit.yaml"`
	Init     ConfigInitCmd     `cmd:"" help:"Write a starter deploykit.yaml"`
}

type (
	ConfigShowCmd     struct{}
	ConfigValidateCmd struct{}
	ConfigInitCmd     struct {
		Force bool `help:"Overwrite an existing deploykit.yaml"`
	}
)

func runConfigShow(cli CLI, deps Dependencies, out io.Writer) int {
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	source := "built-in defaults"
	if target.ConfigPath != "" {
		source = target.ConfigPath
	}
	fmt.Fprintf(out, "# %s\n", source)

	data, err := yaml.Marshal(target.Config)
	if err != nil {
		return exitWithError(out, err)
	}
	fmt.Fprint(out, string(data))
	return 0
}

// runConfigValidate schema-checks the file without resolving a full
// target, so a broken config still gets a report instead of a load error.
func runConfigValidate(cli CLI, deps Dependencies, out io.Writer) int {
	path, err := locateProjectConfig(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	if path == "" {
		return exitWithSuggestion(out, "No deploykit.yaml found.", []string{
			fmt.Sprintf("deploykit config validate -c path/to/%s", meta.ProjectConfigFile),
			fmt.Sprintf("or run '%s config init' first", meta.AppName),
		})
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return exitWithError(out, err)
	}

	console := ui.New(out)
	if err := config.ValidateProjectConfig(content); err != nil {
		console.Errorf("%s: %v", path, err)
		return 1
	}
	console.Success(fmt.Sprintf("%s is valid", path))
	return 0
}

func runConfigInit(cli CLI, deps Dependencies, out io.Writer) int {
	path := filepath.Join(deps.WorkDir, meta.ProjectConfigFile)
	if _, err := os.Stat(path); err == nil && !cli.Config.Init.Force {
		return exitWithError(out, fmt.Errorf("%s already exists (use --force to overwrite)", path))
	}

	project := firstNonEmpty(cli.Project, os.Getenv(constants.EnvProjectName))
	if project == "" {
		return exitWithSuggestion(out, "Project name required.", []string{
			fmt.Sprintf("deploykit config init --project <name> (known projects: %s)", knownProjectList()),
		})
	}

	cfg := config.DefaultProjectConfig(project)
	if cli.Region != "" {
		cfg.AWSRegion = cli.Region
	}

	rendered, err := config.RenderProjectScaffold(cfg)
	if err != nil {
		return exitWithError(out, err)
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return exitWithError(out, err)
	}

	ui.New(out).Success(fmt.Sprintf("Wrote %s", path))
	return 0
}
