// Where: internal/app/name.go
// What: Naming convention commands.
// Why: Expose format, validate, parse, and legacy conversion on the CLI.
package app

import (
	"fmt"
	"io"

	"github.com/triadops/deploykit/internal/naming"
	"github.com/triadops/deploykit/internal/ui"
)

type NameCmd struct {
	Format   NameFormatCmd   `cmd:"" help:"Format a canonical resource name for the target pair"`
	Validate NameValidateCmd `cmd:"" help:"Check a name against the convention"`
	Parse    NameParseCmd    `cmd:"" help:"Split a name into its components"`
	Convert  NameConvertCmd  `cmd:"" help:"Convert a legacy name to canonical form"`
}

type (
	NameFormatCmd struct {
		Resource string `arg:"" help:"Resource identifier (lowercase letters, digits, hyphens)"`
	}
	NameValidateCmd struct {
		Name string `arg:"" help:"Resource name to check"`
	}
	NameParseCmd struct {
		Name string `arg:"" help:"Resource name to parse"`
	}
	NameConvertCmd struct {
		Name string `arg:"" help:"Legacy resource name"`
	}
)

// runNameFormat prints just the formatted name so scripts can capture it.
func runNameFormat(cli CLI, deps Dependencies, out io.Writer) int {
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	name, err := naming.FormatResourceName(target.Project, target.Environment, cli.Name.Format.Resource)
	if err != nil {
		return exitWithError(out, err)
	}

	fmt.Fprintln(out, name)
	return 0
}

func runNameValidate(cli CLI, _ Dependencies, out io.Writer) int {
	console := ui.New(out)
	name := cli.Name.Validate.Name

	if !naming.ValidateResourceName(name) {
		console.Errorf("%s does not follow {project}-{env}-{resource} with known codes", name)
		return 1
	}
	console.Success(fmt.Sprintf("%s is canonical", name))
	return 0
}

func runNameParse(cli CLI, _ Dependencies, out io.Writer) int {
	console := ui.New(out)
	name := cli.Name.Parse.Name

	parsed, ok := naming.ParseResourceName(name)
	if !ok {
		console.Errorf("%s does not match {xxx}-{yyy}-{resource}", name)
		return 1
	}

	canonical := "no"
	if naming.ValidateResourceName(name) {
		canonical = "yes"
	}

	console.Item("Project", parsed.Project)
	console.Item("Environment", parsed.Environment)
	console.Item("Resource", parsed.Resource)
	console.Item("Canonical", canonical)
	return 0
}

func runNameConvert(cli CLI, _ Dependencies, out io.Writer) int {
	console := ui.New(out)
	name := cli.Name.Convert.Name

	legacy := "no"
	if naming.IsLegacyName(name) {
		legacy = "yes"
	}

	canonical, ok := naming.ConvertLegacyName(name)
	if !ok {
		console.Item("Legacy", legacy)
		console.Errorf("no conversion found for %s", name)
		return 1
	}

	console.Item("Legacy", legacy)
	console.Item("Canonical", canonical)
	return 0
}
