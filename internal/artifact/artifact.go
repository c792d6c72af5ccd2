// Where: internal/artifact/artifact.go
// What: Lambda deployment artifact packaging.
// Why: Deploys upload a zip whose layout the runtime handler expects.
package artifact

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// directUploadLimit is the Lambda direct zip upload ceiling. Larger
// artifacts still package but deploys must go through S3, which is what
// the rotation buckets are for.
const directUploadLimit = 50 * 1024 * 1024

var skippedDirs = map[string]bool{
	"__pycache__":    true,
	".git":           true,
	".pytest_cache":  true,
	".venv":          true,
	"tests":          true,
	"node_modules":   true,
	".mypy_cache":    true,
	".ruff_cache":    true,
	"__snapshots__":  true,
	".terraform":     true,
	".serverless":    true,
	".idea":          true,
	".vscode":        true,
	"htmlcov":        true,
	".coverage_html": true,
}

var skippedFiles = map[string]bool{
	".DS_Store": true,
	".coverage": true,
}

var skippedSuffixes = []string{".pyc", ".pyo"}

// Packager zips Lambda source trees.
type Packager struct {
	log log.Interface
}

// NewPackager builds a Packager.
func NewPackager(logger log.Interface) *Packager {
	if logger == nil {
		logger = log.Log
	}
	return &Packager{log: logger}
}

// Result describes a produced artifact.
type Result struct {
	Path  string
	Files int
	Size  int64
}

// Package zips sourceDir into outPath, excluding caches, test trees,
// and editor droppings. Paths inside the archive are slash-separated
// and relative to sourceDir.
func (p *Packager) Package(sourceDir, outPath string) (Result, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return Result{}, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("source %s is not a directory", sourceDir)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return Result{}, err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return Result{}, err
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	files := 0
	err = filepath.WalkDir(sourceDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != sourceDir && skippedDirs[entry.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if skipFile(entry.Name()) {
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if err := addFile(writer, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		writer.Close()
		return Result{}, err
	}
	if err := writer.Close(); err != nil {
		return Result{}, err
	}

	stat, err := out.Stat()
	if err != nil {
		return Result{}, err
	}

	result := Result{Path: outPath, Files: files, Size: stat.Size()}
	if result.Size > directUploadLimit {
		p.log.WithField("size", humanize.Bytes(uint64(result.Size))).
			Warn("artifact exceeds the direct upload limit, deploy via S3")
	}
	p.log.WithField("files", files).WithField("size", humanize.Bytes(uint64(result.Size))).
		Debug("packaged artifact")
	return result, nil
}

func skipFile(name string) bool {
	if skippedFiles[name] {
		return true
	}
	for _, suffix := range skippedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func addFile(writer *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}

// handlerModuleFile maps a Lambda handler string to the module file the
// runtime imports: "lambda_function.lambda_handler" -> "lambda_function.py".
func handlerModuleFile(handler string) (string, error) {
	dot := strings.LastIndex(handler, ".")
	if dot <= 0 || dot == len(handler)-1 {
		return "", fmt.Errorf("invalid handler %q: want module.function", handler)
	}
	module := handler[:dot]
	return strings.ReplaceAll(module, ".", "/") + ".py", nil
}

// ValidateSource checks the handler's module file exists in the source
// tree before anything is packaged.
func ValidateSource(sourceDir, handler string) error {
	module, err := handlerModuleFile(handler)
	if err != nil {
		return err
	}
	path := filepath.Join(sourceDir, filepath.FromSlash(module))
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("handler module %s not found in %s", module, sourceDir)
	}
	return nil
}

// ValidateArchive checks a packaged artifact contains the handler's
// module file.
func ValidateArchive(zipPath, handler string) error {
	module, err := handlerModuleFile(handler)
	if err != nil {
		return err
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name == module {
			return nil
		}
	}
	return fmt.Errorf("handler module %s not found in %s", module, zipPath)
}
