// Where: internal/app/frontend_cmd_test.go
// What: Tests for the frontend deploy command.
// Why: Config plumbing and URL reporting over a fake deployer.
package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/triadops/deploykit/internal/frontend"
)

type fakeDeployer struct {
	result frontend.DeployResult
	err    error
	input  frontend.DeployInput
}

func (f *fakeDeployer) Deploy(_ context.Context, input frontend.DeployInput) (frontend.DeployResult, error) {
	f.input = input
	return f.result, f.err
}

func frontendDeps(t *testing.T, fake *fakeDeployer, configContent string) Dependencies {
	t.Helper()
	workDir := t.TempDir()
	writeConfigFixture(t, workDir, configContent)
	return Dependencies{
		WorkDir: workDir,
		Frontend: FrontendDeps{Deployer: func(_ context.Context, _ Target) (SiteDeployer, error) {
			return fake, nil
		}},
	}
}

func TestFrontendDeployPassesConfigValues(t *testing.T) {
	setupEnv(t)
	fake := &fakeDeployer{result: frontend.DeployResult{
		Bucket:             "custom-bucket",
		Uploaded:           3,
		InvalidationID:     "I2J3K",
		DistributionDomain: "d123abc.cloudfront.net",
	}}
	deps := frontendDeps(t, fake, strings.Join([]string{
		"project: people-cards",
		"frontend:",
		"  bucket: custom-bucket",
		"  distribution_id: E1ABCD",
		"",
	}, "\n"))

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"frontend", "deploy"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if fake.input.Bucket != "custom-bucket" || fake.input.DistributionID != "E1ABCD" {
		t.Fatalf("expected config values passed through, got %+v", fake.input)
	}
	wantDir := filepath.Join(deps.WorkDir, "out")
	if fake.input.BuildDir != wantDir {
		t.Fatalf("expected default build dir %q, got %q", wantDir, fake.input.BuildDir)
	}
	for _, want := range []string{"Deployed 3 files to custom-bucket", "https://d123abc.cloudfront.net", "I2J3K"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to include %q, got %q", want, out.String())
		}
	}
}

func TestFrontendDeployWebsiteURLFallback(t *testing.T) {
	setupEnv(t)
	fake := &fakeDeployer{result: frontend.DeployResult{Bucket: "pec-stg-frontend", Uploaded: 1}}
	deps := frontendDeps(t, fake, "project: people-cards\n")

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"frontend", "deploy"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "http://pec-stg-frontend.s3-website-us-west-1.amazonaws.com") {
		t.Fatalf("expected website endpoint fallback, got %q", out.String())
	}
}

func TestFrontendDeployExplicitDir(t *testing.T) {
	setupEnv(t)
	fake := &fakeDeployer{result: frontend.DeployResult{Bucket: "pec-stg-frontend"}}
	deps := frontendDeps(t, fake, "project: people-cards\n")

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"frontend", "deploy", "build"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if fake.input.BuildDir != "build" {
		t.Fatalf("expected explicit dir to pass through, got %q", fake.input.BuildDir)
	}
}

func TestFrontendDeployError(t *testing.T) {
	setupEnv(t)
	fake := &fakeDeployer{err: errors.New("access denied")}
	deps := frontendDeps(t, fake, "project: people-cards\n")

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"frontend", "deploy"}, deps)
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if !strings.Contains(out.String(), "access denied") {
		t.Fatalf("expected deploy error, got %q", out.String())
	}
}

func TestFrontendDeployWithoutDeployer(t *testing.T) {
	setupEnv(t)

	var out bytes.Buffer
	exitCode := Run([]string{"frontend", "deploy"}, Dependencies{WorkDir: t.TempDir(), Out: &out})
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if !strings.Contains(out.String(), "not implemented") {
		t.Fatalf("expected stub message, got %q", out.String())
	}
}
