// Where: internal/app/bucket_cmd_test.go
// What: Tests for bucket rotation commands.
// Why: Keep CLI behavior stable over a fake rotation manager.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/triadops/deploykit/internal/rotation"
)

type fakeRotation struct {
	buckets       []rotation.Bucket
	nextThousands int
	nextNumber    int
	created       string
	createErr     error
	rotated       string
	rotateErr     error
	deleted       []string
	latest        string

	createCalls int
}

func (f *fakeRotation) BucketName(thousands, number int) string {
	return fmt.Sprintf("people-cards-lambda-staging-%03d-%03d", thousands, number)
}

func (f *fakeRotation) ListProjectBuckets(_ context.Context) []rotation.Bucket {
	return f.buckets
}

func (f *fakeRotation) FindNextBucketNumber(_ context.Context) (int, int) {
	return f.nextThousands, f.nextNumber
}

func (f *fakeRotation) CreateNextBucket(_ context.Context) (string, error) {
	f.createCalls++
	return f.created, f.createErr
}

func (f *fakeRotation) CleanupOldBuckets(_ context.Context) []string {
	return f.deleted
}

func (f *fakeRotation) GetLatestBucket(_ context.Context) string {
	return f.latest
}

func (f *fakeRotation) RotateAndCreate(_ context.Context) (string, error) {
	return f.rotated, f.rotateErr
}

func bucketDeps(t *testing.T, fake *fakeRotation) Dependencies {
	t.Helper()
	workDir := t.TempDir()
	writeProjectFixture(t, workDir, "people-cards")
	return Dependencies{
		WorkDir: workDir,
		Bucket: BucketDeps{Manager: func(_ context.Context, target Target) (RotationManager, error) {
			if target.Project != "people-cards" {
				t.Errorf("expected people-cards target, got %q", target.Project)
			}
			return fake, nil
		}},
	}
}

func TestBucketListShowsSequence(t *testing.T) {
	setupEnv(t)
	fake := &fakeRotation{buckets: []rotation.Bucket{
		{Name: "people-cards-lambda-staging-000-000", Thousands: 0, Number: 0, CreationDate: time.Now().Add(-time.Hour)},
		{Name: "people-cards-lambda-staging-001-024", Thousands: 1, Number: 24},
	}}
	deps := bucketDeps(t, fake)

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "list"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	for _, want := range []string{"people-cards-lambda-staging-000-000", "001-024", "unknown"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to include %q, got %q", want, out.String())
		}
	}
}

func TestBucketListEmpty(t *testing.T) {
	setupEnv(t)
	deps := bucketDeps(t, &fakeRotation{})

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "list"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "none") {
		t.Fatalf("expected empty marker, got %q", out.String())
	}
}

func TestBucketNextShowsSequence(t *testing.T) {
	setupEnv(t)
	deps := bucketDeps(t, &fakeRotation{nextThousands: 1, nextNumber: 24})

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "next"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "001-024") {
		t.Fatalf("expected next sequence, got %q", out.String())
	}
	if !strings.Contains(out.String(), "people-cards-lambda-staging-001-024") {
		t.Fatalf("expected bucket name, got %q", out.String())
	}
}

func TestBucketCreate(t *testing.T) {
	setupEnv(t)
	deps := bucketDeps(t, &fakeRotation{created: "people-cards-lambda-staging-000-005"})

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "create"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "Bucket ready: people-cards-lambda-staging-000-005") {
		t.Fatalf("expected creation message, got %q", out.String())
	}
}

func TestBucketCreateError(t *testing.T) {
	setupEnv(t)
	deps := bucketDeps(t, &fakeRotation{createErr: errors.New("denied")})

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "create"}, deps)
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if !strings.Contains(out.String(), "denied") {
		t.Fatalf("expected error output, got %q", out.String())
	}
}

func TestBucketRotate(t *testing.T) {
	setupEnv(t)
	deps := bucketDeps(t, &fakeRotation{rotated: "people-cards-lambda-staging-000-006"})

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "rotate"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "Rotated to people-cards-lambda-staging-000-006") {
		t.Fatalf("expected rotate message, got %q", out.String())
	}
}

func TestBucketCleanupNothingToDelete(t *testing.T) {
	setupEnv(t)
	deps := bucketDeps(t, &fakeRotation{})

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "cleanup"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "No buckets beyond the retention window") {
		t.Fatalf("expected retention message, got %q", out.String())
	}
}

func TestBucketCleanupReportsDeleted(t *testing.T) {
	setupEnv(t)
	deps := bucketDeps(t, &fakeRotation{deleted: []string{
		"people-cards-lambda-staging-000-000",
		"people-cards-lambda-staging-000-001",
	}})

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "cleanup"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "Deleted 2 old buckets") {
		t.Fatalf("expected deletion count, got %q", out.String())
	}
	if !strings.Contains(out.String(), "people-cards-lambda-staging-000-001") {
		t.Fatalf("expected deleted names, got %q", out.String())
	}
}

func TestBucketLatestPrintsBareName(t *testing.T) {
	setupEnv(t)
	deps := bucketDeps(t, &fakeRotation{latest: "people-cards-lambda-staging-000-003"})

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "latest"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if out.String() != "people-cards-lambda-staging-000-003\n" {
		t.Fatalf("expected bare bucket name, got %q", out.String())
	}
}

func TestBucketLatestMissing(t *testing.T) {
	setupEnv(t)
	deps := bucketDeps(t, &fakeRotation{})

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "latest"}, deps)
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if !strings.Contains(out.String(), "no deployment bucket found") {
		t.Fatalf("expected missing bucket message, got %q", out.String())
	}
}

func TestBucketLatestCreatesWhenAsked(t *testing.T) {
	setupEnv(t)
	fake := &fakeRotation{created: "people-cards-lambda-staging-000-000"}
	deps := bucketDeps(t, fake)

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"bucket", "latest", "--create"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if fake.createCalls != 1 {
		t.Fatalf("expected one create call, got %d", fake.createCalls)
	}
	if out.String() != "people-cards-lambda-staging-000-000\n" {
		t.Fatalf("expected created bucket name, got %q", out.String())
	}
}

func TestBucketManagerFactoryError(t *testing.T) {
	setupEnv(t)
	workDir := t.TempDir()
	writeProjectFixture(t, workDir, "people-cards")

	var out bytes.Buffer
	deps := Dependencies{
		WorkDir: workDir,
		Out:     &out,
		Bucket: BucketDeps{Manager: func(_ context.Context, _ Target) (RotationManager, error) {
			return nil, errors.New("no credentials")
		}},
	}
	exitCode := Run([]string{"bucket", "next"}, deps)
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if !strings.Contains(out.String(), "no credentials") {
		t.Fatalf("expected factory error, got %q", out.String())
	}
}
