// Where: internal/app/bucket.go
// What: Deployment bucket rotation commands.
// Why: Surface the rotation manager operations on the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/triadops/deploykit/internal/ui"
)

type BucketCmd struct {
	List    BucketListCmd    `cmd:"" help:"List rotation buckets for the target pair"`
	Next    BucketNextCmd    `cmd:"" help:"Show the next sequence number without creating"`
	Create  BucketCreateCmd  `cmd:"" help:"Create (or reuse) the next bucket in sequence"`
	Rotate  BucketRotateCmd  `cmd:"" help:"Clean up old buckets and create the next one"`
	Cleanup BucketCleanupCmd `cmd:"" help:"Delete buckets beyond the retention window"`
	Latest  BucketLatestCmd  `cmd:"" help:"Print the current deployment bucket name"`
}

type (
	BucketListCmd    struct{}
	BucketNextCmd    struct{}
	BucketCreateCmd  struct{}
	BucketRotateCmd  struct{}
	BucketCleanupCmd struct{}
	BucketLatestCmd  struct {
		Create bool `help:"Create the first bucket when none exist"`
	}
)

func runBucketList(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Bucket.Manager == nil {
		fmt.Fprintln(out, "bucket: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	manager, err := deps.Bucket.Manager(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	buckets := manager.ListProjectBuckets(ctx)
	console := ui.New(out)
	console.Header("🪣", fmt.Sprintf("Rotation buckets for %s/%s", target.Project, target.Environment))
	if len(buckets) == 0 {
		console.ItemPlain("none")
		return 0
	}

	writer := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "   NAME\tSEQ\tCREATED")
	for _, bucket := range buckets {
		created := "unknown"
		if !bucket.CreationDate.IsZero() {
			created = humanize.Time(bucket.CreationDate)
		}
		fmt.Fprintf(writer, "   %s\t%03d-%03d\t%s\n", bucket.Name, bucket.Thousands, bucket.Number, created)
	}
	writer.Flush()
	return 0
}

func runBucketNext(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Bucket.Manager == nil {
		fmt.Fprintln(out, "bucket: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	manager, err := deps.Bucket.Manager(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	thousands, number := manager.FindNextBucketNumber(ctx)
	console := ui.New(out)
	console.Item("Next sequence", fmt.Sprintf("%03d-%03d", thousands, number))
	console.Item("Bucket name", manager.BucketName(thousands, number))
	return 0
}

func runBucketCreate(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Bucket.Manager == nil {
		fmt.Fprintln(out, "bucket: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	manager, err := deps.Bucket.Manager(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	stop := startSpinner(out, "Creating deployment bucket...")
	name, err := manager.CreateNextBucket(ctx)
	stop()
	if err != nil {
		return exitWithError(out, err)
	}

	ui.New(out).Success(fmt.Sprintf("Bucket ready: %s", name))
	return 0
}

func runBucketRotate(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Bucket.Manager == nil {
		fmt.Fprintln(out, "bucket: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	manager, err := deps.Bucket.Manager(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	stop := startSpinner(out, "Rotating deployment buckets...")
	name, err := manager.RotateAndCreate(ctx)
	stop()
	if err != nil {
		return exitWithError(out, err)
	}

	ui.New(out).Success(fmt.Sprintf("Rotated to %s", name))
	return 0
}

func runBucketCleanup(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Bucket.Manager == nil {
		fmt.Fprintln(out, "bucket: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	manager, err := deps.Bucket.Manager(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	stop := startSpinner(out, "Cleaning up old buckets...")
	deleted := manager.CleanupOldBuckets(ctx)
	stop()

	console := ui.New(out)
	if len(deleted) == 0 {
		console.Info("No buckets beyond the retention window")
		return 0
	}

	console.Success(fmt.Sprintf("Deleted %d old buckets", len(deleted)))
	for _, name := range deleted {
		console.ItemPlain(name)
	}
	return 0
}

// runBucketLatest prints the bare bucket name for script consumption.
func runBucketLatest(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Bucket.Manager == nil {
		fmt.Fprintln(out, "bucket: not implemented")
		return 1
	}
	target, err := resolveTarget(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	manager, err := deps.Bucket.Manager(ctx, target)
	if err != nil {
		return exitWithError(out, err)
	}

	name := manager.GetLatestBucket(ctx)
	if name == "" {
		if !cli.Bucket.Latest.Create {
			fmt.Fprintf(out, "no deployment bucket found for %s/%s\n", target.Project, target.Environment)
			return 1
		}
		created, err := manager.CreateNextBucket(ctx)
		if err != nil {
			return exitWithError(out, err)
		}
		name = created
	}

	fmt.Fprintln(out, name)
	return 0
}
