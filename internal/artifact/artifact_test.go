// Where: internal/artifact/artifact_test.go
// What: Tests for Lambda artifact packaging.
package artifact

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()

	var names []string
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	sort.Strings(names)
	return names
}

func testPackager() *Packager {
	return NewPackager(&log.Logger{Handler: discard.Default, Level: log.ErrorLevel})
}

func TestPackageExcludesCachesAndTests(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"lambda_function.py":        "def lambda_handler(event, context): ...",
		"lib/util.py":               "x = 1",
		"lib/util.pyc":              "binary",
		"__pycache__/mod.cpython":   "cache",
		"tests/test_handler.py":     "def test(): ...",
		".DS_Store":                 "junk",
		"lib/__pycache__/util.spam": "cache",
	})

	outPath := filepath.Join(t.TempDir(), "artifact.zip")
	result, err := testPackager().Package(src, outPath)
	if err != nil {
		t.Fatalf("package: %v", err)
	}

	names := archiveNames(t, outPath)
	want := []string{"lambda_function.py", "lib/util.py"}
	if len(names) != len(want) {
		t.Fatalf("archive names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("archive names = %v, want %v", names, want)
		}
	}
	if result.Files != 2 {
		t.Errorf("result.Files = %d, want 2", result.Files)
	}
	if result.Size <= 0 {
		t.Errorf("result.Size = %d", result.Size)
	}
}

func TestPackageMissingSource(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "artifact.zip")
	if _, err := testPackager().Package(filepath.Join(t.TempDir(), "nope"), outPath); err == nil {
		t.Fatal("expected an error for a missing source directory")
	}
}

func TestValidateSource(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"lambda_function.py": "def lambda_handler(event, context): ...",
		"app/handlers.py":    "def main(event, context): ...",
	})

	if err := ValidateSource(src, "lambda_function.lambda_handler"); err != nil {
		t.Errorf("flat handler: %v", err)
	}
	if err := ValidateSource(src, "app.handlers.main"); err != nil {
		t.Errorf("nested handler: %v", err)
	}
	if err := ValidateSource(src, "missing.handler"); err == nil {
		t.Error("expected missing module error")
	}
	if err := ValidateSource(src, "no_function"); err == nil {
		t.Error("expected malformed handler error")
	}
}

func TestValidateArchive(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"lambda_function.py": "def lambda_handler(event, context): ...",
	})
	outPath := filepath.Join(t.TempDir(), "artifact.zip")
	if _, err := testPackager().Package(src, outPath); err != nil {
		t.Fatalf("package: %v", err)
	}

	if err := ValidateArchive(outPath, "lambda_function.lambda_handler"); err != nil {
		t.Errorf("validate archive: %v", err)
	}
	if err := ValidateArchive(outPath, "other_module.handler"); err == nil {
		t.Error("expected missing module error")
	}
}
