// Where: cmd/deploykit/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"os"
	"time"

	"github.com/triadops/deploykit/internal/app"
	"github.com/triadops/deploykit/internal/localdev"
	"github.com/triadops/deploykit/internal/logging"
)

var (
	getwd           = os.Getwd
	newDockerClient = localdev.NewDockerClient
)

// buildDependencies constructs all runtime dependencies required by the CLI.
// AWS clients and the Docker client are built lazily by the factories, so
// commands that never touch them carry no construction cost.
func buildDependencies() (app.Dependencies, error) {
	workDir, err := getwd()
	if err != nil {
		return app.Dependencies{}, err
	}

	logger := logging.Base()
	deps := app.Dependencies{
		WorkDir:  workDir,
		Out:      os.Stdout,
		Logger:   logger,
		Now:      time.Now,
		Prompter: app.HuhPrompter{},
		Bucket: app.BucketDeps{
			Manager: app.NewRotationFactory(logger),
		},
		Tables: app.TablesDeps{
			Manager: app.NewTablesFactory(logger),
		},
		Frontend: app.FrontendDeps{
			Deployer: app.NewDeployerFactory(logger),
		},
		Local: app.LocalDeps{
			Docker: newDockerClient,
			Prober: app.NewLocalProber(),
		},
		Identity: app.IdentityDeps{
			Account: app.NewAccountResolver(),
		},
	}

	return deps, nil
}
