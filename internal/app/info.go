// Where: internal/app/info.go
// What: Identity and configuration display.
// Why: Show the resolved target at a glance when deploykit runs bare.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/triadops/deploykit/internal/config"
	"github.com/triadops/deploykit/internal/meta"
	"github.com/triadops/deploykit/internal/naming"
	"github.com/triadops/deploykit/internal/rotation"
	"github.com/triadops/deploykit/internal/ui"
	"github.com/triadops/deploykit/internal/version"
)

// runNoArgs displays configuration details when deploykit is invoked
// without arguments.
func runNoArgs(deps Dependencies, out io.Writer) int {
	return runInfo(CLI{}, deps, out)
}

func runInfo(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)

	console.Header("⚙️", "Config")
	console.Item("Version", version.GetVersion())
	if globalPath, err := config.GlobalConfigPath(); err == nil {
		console.Item("Global config", globalPath)
	}

	target, err := resolveTarget(cli, deps)
	if err != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, err)
		return 1
	}

	projectCode, err := naming.ProjectCode(target.Project)
	if err != nil {
		return exitWithError(out, err)
	}
	environmentCode, err := naming.EnvironmentCode(target.Environment)
	if err != nil {
		return exitWithError(out, err)
	}

	source := "built-in defaults"
	if target.ConfigPath != "" {
		source = target.ConfigPath
	}

	fmt.Fprintln(out)
	console.Header("📦", "Project")
	console.Item("Name", target.Project)
	console.Item("Code", projectCode)
	console.Item("Config", source)

	fmt.Fprintln(out)
	console.Header("🌐", "Environment")
	console.Item("Name", target.Environment)
	console.Item("Code", environmentCode)
	if target.Region != "" {
		console.Item("Region", target.Region)
	}
	if target.Profile != "" {
		console.Item("Profile", target.Profile)
	}

	account := "unknown"
	if deps.Identity.Account != nil {
		if resolved, err := deps.Identity.Account(context.Background(), target); err == nil && resolved != "" {
			account = resolved
		}
	}
	console.Item("Account", account)

	fmt.Fprintln(out)
	console.Header("🪣", "Buckets")
	console.Item("Pattern", fmt.Sprintf("%s-lambda-%s-NNN-NNN", target.Project, target.Environment))
	console.Item("Retention", rotation.DefaultRetentionCount)
	console.ItemPlain(fmt.Sprintf("Run '%s bucket latest' for the current deployment bucket.", meta.AppName))
	return 0
}
