// Where: internal/app/frontend_cmd.go
// What: Frontend deploy command.
// Why: Push static builds to the website bucket and invalidate the CDN.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/triadops/deploykit/internal/frontend"
	"github.com/triadops/deploykit/internal/ui"
)

type FrontendCmd struct {
	Deploy FrontendDeployCmd `cmd:"" help:"Upload a build directory to the site bucket"`
}

type FrontendDeployCmd struct {
	Dir string `arg:"" optional:"" help:"Build directory (default: frontend.build_dir from deploykit.yaml)"`
}

func runFrontendDeploy(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Frontend.Deployer == nil {
		fmt.Fprintln(out, "frontend: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	dir := cli.Frontend.Deploy.Dir
	if dir == "" {
		dir = resolveConfigPath(target.Dir, target.Config.Frontend.BuildDir)
	}
	if dir == "" {
		return exitWithSuggestion(out, "Build directory required.", []string{
			"deploykit frontend deploy <build-dir>",
			"or set frontend.build_dir in deploykit.yaml",
		})
	}

	ctx := context.Background()
	deployer, err := deps.Frontend.Deployer(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	stop := startSpinner(out, "Deploying frontend...")
	result, err := deployer.Deploy(ctx, frontend.DeployInput{
		BuildDir:       dir,
		Bucket:         target.Config.Frontend.Bucket,
		DistributionID: target.Config.Frontend.DistributionID,
		IndexDocument:  target.Config.Frontend.IndexDocument,
		ErrorDocument:  target.Config.Frontend.ErrorDocument,
	})
	stop()
	if err != nil {
		return exitWithError(out, err)
	}

	url := frontend.WebsiteURL(result.Bucket, target.Region)
	if result.DistributionDomain != "" {
		url = "https://" + result.DistributionDomain
	}

	console := ui.New(out)
	console.Success(fmt.Sprintf("Deployed %d files to %s", result.Uploaded, result.Bucket))
	console.Item("Site", url)
	if result.InvalidationID != "" {
		console.Item("Invalidation", result.InvalidationID)
	}
	return 0
}
