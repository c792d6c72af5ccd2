// Where: internal/config/scaffold.go
// What: Starter deploykit.yaml rendering.
// Why: Give init a commented, ready-to-edit project file.
package config

import (
	"bytes"
	"embed"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	scaffoldOnce sync.Once
	scaffoldErr  error
	scaffoldTmpl *template.Template
)

// RenderProjectScaffold renders a starter deploykit.yaml for the given
// configuration. The output validates against the project schema.
func RenderProjectScaffold(cfg ProjectConfig) (string, error) {
	tmpl, err := loadScaffoldTemplate()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func loadScaffoldTemplate() (*template.Template, error) {
	scaffoldOnce.Do(func() {
		scaffoldTmpl, scaffoldErr = template.New("deploykit.yaml.tmpl").
			Funcs(sprig.TxtFuncMap()).
			ParseFS(templateFS, "templates/deploykit.yaml.tmpl")
	})
	return scaffoldTmpl, scaffoldErr
}
