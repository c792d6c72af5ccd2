// Where: internal/app/tables_cmd.go
// What: DynamoDB table commands: ensure, list, seed.
// Why: Drive the table manager from the configured table definitions.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/triadops/deploykit/internal/config"
	"github.com/triadops/deploykit/internal/ui"
)

type TablesCmd struct {
	Ensure TablesEnsureCmd `cmd:"" help:"Create configured tables that do not exist yet"`
	List   TablesListCmd   `cmd:"" help:"List project tables in the target environment"`
	Seed   TablesSeedCmd   `cmd:"" help:"Load seed items from JSON files into tables"`
}

type (
	TablesEnsureCmd struct{}
	TablesListCmd   struct{}
	TablesSeedCmd   struct {
		File  string `arg:"" optional:"" help:"Seed file (defaults to configured seed_file entries)"`
		Table string `help:"Resource name of the table to seed"`
	}
)

func runTablesEnsure(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Tables.Manager == nil {
		fmt.Fprintln(out, "tables: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	console := ui.New(out)
	if len(target.Config.Tables) == 0 {
		console.Info(fmt.Sprintf("No tables configured for %s", target.Project))
		return 0
	}

	ctx := context.Background()
	manager, err := deps.Tables.Manager(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	stop := startSpinner(out, "Ensuring tables...")
	results, err := manager.EnsureAll(ctx, target.Config.Tables)
	stop()
	if err != nil {
		return exitWithError(out, err)
	}

	console.Header("🗄️", fmt.Sprintf("Tables for %s/%s", target.Project, target.Environment))
	for _, result := range results {
		state := "exists"
		if result.Created {
			state = "created"
		}
		console.Item(result.Resource, fmt.Sprintf("%s (%s)", result.TableName, state))
	}
	return 0
}

func runTablesList(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Tables.Manager == nil {
		fmt.Fprintln(out, "tables: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	manager, err := deps.Tables.Manager(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	names, err := manager.List(ctx)
	if err != nil {
		return exitWithError(out, err)
	}

	console := ui.New(out)
	console.Header("🗄️", fmt.Sprintf("Tables for %s/%s", target.Project, target.Environment))
	if len(names) == 0 {
		console.ItemPlain("none")
		return 0
	}
	for _, name := range names {
		console.ItemPlain(name)
	}
	return 0
}

func runTablesSeed(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Tables.Manager == nil {
		fmt.Fprintln(out, "tables: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	manager, err := deps.Tables.Manager(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	console := ui.New(out)
	file := cli.Tables.Seed.File
	resource := cli.Tables.Seed.Table

	if file != "" {
		if resource == "" {
			if len(target.Config.Tables) != 1 {
				return exitWithSuggestion(out, "Multiple tables configured.", []string{
					fmt.Sprintf("Pass --table to choose one of: %s", tableResourceList(target.Config.Tables)),
				})
			}
			resource = target.Config.Tables[0].Name
		}
		count, err := manager.SeedFromFile(ctx, resource, file)
		if err != nil {
			return exitWithError(out, err)
		}
		console.Success(fmt.Sprintf("Seeded %d items into %s", count, resource))
		return 0
	}

	seeded := 0
	for _, table := range target.Config.Tables {
		if resource != "" && table.Name != resource {
			continue
		}
		if table.SeedFile == "" {
			if resource != "" {
				return exitWithError(out, fmt.Errorf("table %s has no seed_file configured", table.Name))
			}
			continue
		}
		count, err := manager.SeedFromFile(ctx, table.Name, resolveConfigPath(target.Dir, table.SeedFile))
		if err != nil {
			return exitWithError(out, err)
		}
		console.Item(table.Name, fmt.Sprintf("%d items", count))
		seeded++
	}
	if seeded == 0 {
		if resource != "" {
			return exitWithError(out, fmt.Errorf("no table named %s in config (configured: %s)",
				resource, tableResourceList(target.Config.Tables)))
		}
		console.Info("No seed_file entries configured")
		return 0
	}
	console.Success(fmt.Sprintf("Seeded %d tables", seeded))
	return 0
}

func tableResourceList(tables []config.TableConfig) string {
	names := make([]string, 0, len(tables))
	for _, table := range tables {
		names = append(names, table.Name)
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
