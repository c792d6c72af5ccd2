// Where: internal/app/local.go
// What: Local DynamoDB stack commands.
// Why: One-command bring-up of dynamodb-local and its admin UI.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/triadops/deploykit/internal/localdev"
	"github.com/triadops/deploykit/internal/ui"
)

const localReadyTimeout = 30 * time.Second

type LocalCmd struct {
	Up     LocalUpCmd     `cmd:"" help:"Start DynamoDB Local and the admin UI"`
	Down   LocalDownCmd   `cmd:"" help:"Stop the local stack"`
	Status LocalStatusCmd `cmd:"" help:"Show local stack container state"`
}

type (
	LocalUpCmd struct {
		Wait bool `short:"w" help:"Wait until DynamoDB answers queries"`
	}
	LocalDownCmd struct {
		Volumes bool `help:"Remove named volumes"`
	}
	LocalStatusCmd struct{}
)

// The local stack is shared across projects (sharedDb, fixed container
// names), so these handlers do not resolve a project target.
func runLocalUp(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Local.Docker == nil {
		fmt.Fprintln(out, "local: not implemented")
		return 1
	}
	client, err := deps.Local.Docker()
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	dynamoPort, adminPort := localdev.ResolvePorts()
	stack := localdev.NewStack(client, dynamoPort, adminPort, deps.Logger)

	stop := startSpinner(out, "Starting local stack...")
	err = stack.Up(ctx)
	stop()
	if err != nil {
		return exitWithError(out, err)
	}

	if cli.Local.Up.Wait && deps.Local.Prober != nil {
		prober, err := deps.Local.Prober(ctx, Target{}, stack.DynamoEndpoint())
		if err != nil {
			return exitWithError(out, err)
		}
		stopWait := startSpinner(out, "Waiting for DynamoDB...")
		err = stack.WaitReady(ctx, prober, localReadyTimeout)
		stopWait()
		if err != nil {
			return exitWithError(out, err)
		}
	}

	console := ui.New(out)
	console.Success("Local stack is up")
	console.Item("DynamoDB", stack.DynamoEndpoint())
	console.Item("Admin UI", stack.AdminURL())
	console.ItemPlain(fmt.Sprintf("export DYNAMODB_ENDPOINT=%s", stack.DynamoEndpoint()))
	return 0
}

func runLocalDown(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Local.Docker == nil {
		fmt.Fprintln(out, "local: not implemented")
		return 1
	}
	client, err := deps.Local.Docker()
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	dynamoPort, adminPort := localdev.ResolvePorts()
	stack := localdev.NewStack(client, dynamoPort, adminPort, deps.Logger)

	if err := stack.Down(ctx, cli.Local.Down.Volumes); err != nil {
		return exitWithError(out, err)
	}
	ui.New(out).Success("Local stack stopped")
	return 0
}

func runLocalStatus(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Local.Docker == nil {
		fmt.Fprintln(out, "local: not implemented")
		return 1
	}
	client, err := deps.Local.Docker()
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	dynamoPort, adminPort := localdev.ResolvePorts()
	stack := localdev.NewStack(client, dynamoPort, adminPort, deps.Logger)

	statuses, err := stack.Status(ctx)
	if err != nil {
		return exitWithError(out, err)
	}

	console := ui.New(out)
	console.Header("🐳", "Local stack")
	if len(statuses) == 0 {
		console.Info("Local stack is not running")
		return 0
	}

	writer := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "   NAME\tROLE\tSTATE\tPORTS")
	for _, status := range statuses {
		ports := "-"
		if len(status.Ports) > 0 {
			ports = strings.Join(status.Ports, ",")
		}
		fmt.Fprintf(writer, "   %s\t%s\t%s\t%s\n", status.Name, status.Role, status.State, ports)
	}
	writer.Flush()
	return 0
}
