// Where: internal/app/name_test.go
// What: Tests for naming convention commands.
// Why: Keep name output script-friendly and conversion behavior stable.
package app

import (
	"bytes"
	"strings"
	"testing"
)

func nameDeps(t *testing.T) Dependencies {
	t.Helper()
	workDir := t.TempDir()
	writeProjectFixture(t, workDir, "people-cards")
	return Dependencies{WorkDir: workDir}
}

func TestNameFormatPrintsBareName(t *testing.T) {
	setupEnv(t)
	deps := nameDeps(t)

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"name", "format", "cards"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	// Scripts capture the output, so the name is the whole line.
	if out.String() != "pec-stg-cards\n" {
		t.Fatalf("expected bare name, got %q", out.String())
	}
}

func TestNameFormatHonorsEnvFlag(t *testing.T) {
	setupEnv(t)
	deps := nameDeps(t)

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"name", "format", "-e", "production", "cards"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if out.String() != "pec-prd-cards\n" {
		t.Fatalf("expected production name, got %q", out.String())
	}
}

func TestNameFormatRejectsBadResource(t *testing.T) {
	setupEnv(t)
	deps := nameDeps(t)

	var out bytes.Buffer
	deps.Out = &out
	exitCode := Run([]string{"name", "format", "Admin_API"}, deps)
	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d: %s", exitCode, out.String())
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Fatal("expected an error message")
	}
}

func TestNameValidate(t *testing.T) {
	setupEnv(t)

	var out bytes.Buffer
	exitCode := Run([]string{"name", "validate", "pec-stg-cards"}, Dependencies{Out: &out})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "is canonical") {
		t.Fatalf("expected success message, got %q", out.String())
	}

	out.Reset()
	exitCode = Run([]string{"name", "validate", "pec-qa-cards"}, Dependencies{Out: &out})
	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "does not follow") {
		t.Fatalf("expected failure message, got %q", out.String())
	}
}

func TestNameParseCanonical(t *testing.T) {
	setupEnv(t)

	var out bytes.Buffer
	exitCode := Run([]string{"name", "parse", "fon-prd-api-handler"}, Dependencies{Out: &out})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	for _, want := range []string{"fon", "prd", "api-handler", "yes"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to include %q, got %q", want, out.String())
		}
	}
}

func TestNameParseUnknownCodes(t *testing.T) {
	setupEnv(t)

	var out bytes.Buffer
	exitCode := Run([]string{"name", "parse", "abc-xyz-thing"}, Dependencies{Out: &out})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	// Parses positionally but the codes are outside the known set.
	if !strings.Contains(out.String(), "no") {
		t.Fatalf("expected non-canonical marker, got %q", out.String())
	}
}

func TestNameParseRejectsOtherShapes(t *testing.T) {
	setupEnv(t)

	var out bytes.Buffer
	exitCode := Run([]string{"name", "parse", "not-a-name"}, Dependencies{Out: &out})
	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "does not match") {
		t.Fatalf("expected failure message, got %q", out.String())
	}
}

func TestNameConvertDroppedDuplicateEnvironment(t *testing.T) {
	setupEnv(t)

	var out bytes.Buffer
	exitCode := Run([]string{"name", "convert", "people-cards-staging-cards-staging"}, Dependencies{Out: &out})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "pec-stg-cards") {
		t.Fatalf("expected converted name, got %q", out.String())
	}
	if !strings.Contains(out.String(), "yes") {
		t.Fatalf("expected legacy marker, got %q", out.String())
	}
}

func TestNameConvertEnvironmentSuffix(t *testing.T) {
	setupEnv(t)

	var out bytes.Buffer
	exitCode := Run([]string{"name", "convert", "fraud-or-not-detector-dev"}, Dependencies{Out: &out})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "fon-dev-detector") {
		t.Fatalf("expected converted name, got %q", out.String())
	}
}

func TestNameConvertNoMatch(t *testing.T) {
	setupEnv(t)

	var out bytes.Buffer
	exitCode := Run([]string{"name", "convert", "mystery-thing"}, Dependencies{Out: &out})
	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "no conversion found") {
		t.Fatalf("expected failure message, got %q", out.String())
	}
}
