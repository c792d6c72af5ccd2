// Where: internal/app/lambda.go
// What: Lambda artifact commands: package and validate.
// Why: Produce and check deployable zips before they hit the rotation bucket.
package app

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/triadops/deploykit/internal/artifact"
	"github.com/triadops/deploykit/internal/naming"
	"github.com/triadops/deploykit/internal/ui"
)

type LambdaCmd struct {
	Package  LambdaPackageCmd  `cmd:"" help:"Zip a Lambda source tree for deployment"`
	Validate LambdaValidateCmd `cmd:"" help:"Check an artifact contains the handler module"`
}

type (
	LambdaPackageCmd struct {
		Source string `arg:"" optional:"" help:"Source directory (default: lambda.source_dir from deploykit.yaml)"`
		Output string `short:"o" help:"Output zip path (default: canonical name + .zip)"`
	}
	LambdaValidateCmd struct {
		Archive string `arg:"" help:"Artifact zip to inspect"`
		Handler string `help:"Handler as module.function (default: lambda.handler from deploykit.yaml)"`
	}
)

func runLambdaPackage(cli CLI, deps Dependencies, out io.Writer) int {
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	source := cli.Lambda.Package.Source
	if source == "" {
		source = resolveConfigPath(target.Dir, target.Config.Lambda.SourceDir)
	}
	if source == "" {
		return exitWithSuggestion(out, "Lambda source directory required.", []string{
			"deploykit lambda package <source-dir>",
			"or set lambda.source_dir in deploykit.yaml",
		})
	}

	if handler := target.Config.Lambda.Handler; handler != "" {
		if err := artifact.ValidateSource(source, handler); err != nil {
			return exitWithError(out, err)
		}
	}

	output := cli.Lambda.Package.Output
	if output == "" {
		name, err := naming.FormatResourceName(target.Project, target.Environment, "lambda")
		if err != nil {
			return exitWithError(out, err)
		}
		output = name + ".zip"
	}

	stop := startSpinner(out, "Packaging artifact...")
	result, err := artifact.NewPackager(deps.Logger).Package(source, output)
	stop()
	if err != nil {
		return exitWithError(out, err)
	}

	console := ui.New(out)
	console.Success(fmt.Sprintf("Packaged %s", result.Path))
	console.Item("Files", result.Files)
	console.Item("Size", humanize.Bytes(uint64(result.Size)))
	return 0
}

func runLambdaValidate(cli CLI, deps Dependencies, out io.Writer) int {
	handler := cli.Lambda.Validate.Handler
	if handler == "" {
		if target, err := resolveTarget(cli, deps); err == nil {
			handler = target.Config.Lambda.Handler
		}
	}
	if handler == "" {
		return exitWithSuggestion(out, "Handler required.", []string{
			"deploykit lambda validate <archive.zip> --handler module.function",
		})
	}

	archive := cli.Lambda.Validate.Archive
	if err := artifact.ValidateArchive(archive, handler); err != nil {
		return exitWithError(out, err)
	}
	ui.New(out).Success(fmt.Sprintf("%s contains handler %s", archive, handler))
	return 0
}
