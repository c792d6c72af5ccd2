// Where: internal/config/project.go
// What: Per-project deploykit.yaml configuration.
// Why: One file describes a project's regions, tables, and deploy targets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/triadops/deploykit/internal/constants"
	"github.com/triadops/deploykit/internal/envutil"
	"github.com/triadops/deploykit/internal/meta"
)

// DefaultEnvironments is the environment set every project starts with.
var DefaultEnvironments = []string{"development", "staging", "production"}

// ProjectConfig represents a project's deploykit.yaml.
type ProjectConfig struct {
	Version      int      `yaml:"version,omitempty" json:"version,omitempty"`
	Project      string   `yaml:"project" json:"project"`
	AWSRegion    string   `yaml:"aws_region,omitempty" json:"aws_region,omitempty"`
	AWSProfile   string   `yaml:"aws_profile,omitempty" json:"aws_profile,omitempty"`
	Environments []string `yaml:"environments,omitempty" json:"environments,omitempty"`

	Lambda   LambdaConfig   `yaml:"lambda,omitempty" json:"lambda,omitempty"`
	Frontend FrontendConfig `yaml:"frontend,omitempty" json:"frontend,omitempty"`
	Tables   []TableConfig  `yaml:"tables,omitempty" json:"tables,omitempty"`
}

// LambdaConfig describes where deployable function code lives.
type LambdaConfig struct {
	SourceDir string `yaml:"source_dir,omitempty" json:"source_dir,omitempty"`
	Handler   string `yaml:"handler,omitempty" json:"handler,omitempty"`
	Runtime   string `yaml:"runtime,omitempty" json:"runtime,omitempty"`
}

// FrontendConfig describes the static site deploy target.
type FrontendConfig struct {
	BuildDir       string `yaml:"build_dir,omitempty" json:"build_dir,omitempty"`
	Bucket         string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	DistributionID string `yaml:"distribution_id,omitempty" json:"distribution_id,omitempty"`
	IndexDocument  string `yaml:"index_document,omitempty" json:"index_document,omitempty"`
	ErrorDocument  string `yaml:"error_document,omitempty" json:"error_document,omitempty"`
}

// TableConfig describes one DynamoDB table. Name is the bare resource
// part; the physical table name is derived through the naming convention
// at provisioning time.
type TableConfig struct {
	Name          string        `yaml:"name" json:"name"`
	BillingMode   string        `yaml:"billing_mode,omitempty" json:"billing_mode,omitempty"`
	HashKey       KeyConfig     `yaml:"hash_key" json:"hash_key"`
	RangeKey      *KeyConfig    `yaml:"range_key,omitempty" json:"range_key,omitempty"`
	ReadCapacity  int64         `yaml:"read_capacity,omitempty" json:"read_capacity,omitempty"`
	WriteCapacity int64         `yaml:"write_capacity,omitempty" json:"write_capacity,omitempty"`
	GlobalIndexes []IndexConfig `yaml:"global_indexes,omitempty" json:"global_indexes,omitempty"`
	SeedFile      string        `yaml:"seed_file,omitempty" json:"seed_file,omitempty"`
}

// KeyConfig is a single key attribute: name plus DynamoDB scalar type.
type KeyConfig struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// IndexConfig describes a global secondary index.
type IndexConfig struct {
	Name             string     `yaml:"name" json:"name"`
	HashKey          KeyConfig  `yaml:"hash_key" json:"hash_key"`
	RangeKey         *KeyConfig `yaml:"range_key,omitempty" json:"range_key,omitempty"`
	Projection       string     `yaml:"projection,omitempty" json:"projection,omitempty"`
	NonKeyAttributes []string   `yaml:"non_key_attributes,omitempty" json:"non_key_attributes,omitempty"`
}

// DefaultProjectConfig returns the built-in configuration for a project.
// The three first-party projects carry their known table sets; anything
// else gets the generic defaults.
func DefaultProjectConfig(project string) ProjectConfig {
	cfg := ProjectConfig{
		Version:      1,
		Project:      project,
		AWSRegion:    "us-west-1",
		Environments: append([]string(nil), DefaultEnvironments...),
		Lambda: LambdaConfig{
			SourceDir: "lambda",
			Handler:   "lambda_function.lambda_handler",
			Runtime:   "python3.12",
		},
		Frontend: FrontendConfig{
			BuildDir:      "out",
			IndexDocument: "index.html",
			ErrorDocument: "404.html",
		},
	}

	switch project {
	case "people-cards":
		cfg.Tables = []TableConfig{
			{
				Name:    "cards",
				HashKey: KeyConfig{Name: "card_id", Type: "S"},
				GlobalIndexes: []IndexConfig{
					{
						Name:       "owner-index",
						HashKey:    KeyConfig{Name: "owner_id", Type: "S"},
						RangeKey:   &KeyConfig{Name: "created_at", Type: "S"},
						Projection: "ALL",
					},
				},
			},
			{
				Name:     "profiles",
				HashKey:  KeyConfig{Name: "user_id", Type: "S"},
				RangeKey: &KeyConfig{Name: "profile_id", Type: "S"},
			},
		}
	case "fraud-or-not":
		cfg.Tables = []TableConfig{
			{
				Name:     "reports",
				HashKey:  KeyConfig{Name: "report_id", Type: "S"},
				RangeKey: &KeyConfig{Name: "submitted_at", Type: "S"},
				GlobalIndexes: []IndexConfig{
					{
						Name:       "status-index",
						HashKey:    KeyConfig{Name: "status", Type: "S"},
						RangeKey:   &KeyConfig{Name: "submitted_at", Type: "S"},
						Projection: "ALL",
					},
				},
			},
			{
				Name:    "verdicts",
				HashKey: KeyConfig{Name: "report_id", Type: "S"},
			},
		}
	case "media-register":
		cfg.Tables = []TableConfig{
			{
				Name:     "entries",
				HashKey:  KeyConfig{Name: "entry_id", Type: "S"},
				RangeKey: &KeyConfig{Name: "version", Type: "N"},
			},
		}
	}

	return cfg
}

// LoadProjectConfig reads, validates, and parses a deploykit.yaml, then
// fills unset fields from the project's built-in defaults.
func LoadProjectConfig(path string) (ProjectConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return ProjectConfig{}, err
	}
	if err := ValidateProjectConfig(payload); err != nil {
		return ProjectConfig{}, fmt.Errorf("%s: %w", path, err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return ProjectConfig{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// SaveProjectConfig writes a deploykit.yaml to the specified path.
func SaveProjectConfig(path string, cfg ProjectConfig) error {
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func (c *ProjectConfig) applyDefaults() {
	defaults := DefaultProjectConfig(c.Project)
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.AWSRegion == "" {
		c.AWSRegion = defaults.AWSRegion
	}
	if len(c.Environments) == 0 {
		c.Environments = defaults.Environments
	}
	if c.Lambda.SourceDir == "" {
		c.Lambda.SourceDir = defaults.Lambda.SourceDir
	}
	if c.Lambda.Handler == "" {
		c.Lambda.Handler = defaults.Lambda.Handler
	}
	if c.Lambda.Runtime == "" {
		c.Lambda.Runtime = defaults.Lambda.Runtime
	}
	if c.Frontend.BuildDir == "" {
		c.Frontend.BuildDir = defaults.Frontend.BuildDir
	}
	if c.Frontend.IndexDocument == "" {
		c.Frontend.IndexDocument = defaults.Frontend.IndexDocument
	}
	if c.Frontend.ErrorDocument == "" {
		c.Frontend.ErrorDocument = defaults.Frontend.ErrorDocument
	}
	if len(c.Tables) == 0 {
		c.Tables = defaults.Tables
	}
}

// HasEnvironment reports whether the project deploys to the given
// environment under any accepted spelling.
func (c ProjectConfig) HasEnvironment(environment string) bool {
	needle := strings.ToLower(strings.TrimSpace(environment))
	for _, env := range c.Environments {
		if strings.ToLower(env) == needle {
			return true
		}
	}
	return false
}

// ResolveProjectDir determines the directory holding deploykit.yaml.
// Priority:
// 1. DEPLOYKIT_PROJECT_DIR environment variable (validated or searched upward)
// 2. Upward search from startDir
// 3. The active project's registered path in the global config
func ResolveProjectDir(startDir string) (string, error) {
	if dir := strings.TrimSpace(envutil.Get(constants.SuffixProjectDir)); dir != "" {
		if root, ok := findProjectDir(dir); ok {
			return root, nil
		}
	}

	if startDir != "" {
		if root, ok := findProjectDir(startDir); ok {
			return root, nil
		}
	}

	if cfgPath, err := GlobalConfigPath(); err == nil {
		if cfg, err := LoadGlobalConfig(cfgPath); err == nil && cfg.ActiveProject != "" {
			if entry, ok := cfg.Projects[cfg.ActiveProject]; ok {
				if root, ok := findProjectDir(entry.Path); ok {
					return root, nil
				}
			}
		}
	}

	return "", fmt.Errorf("no %s found. Run '%s init' or set %s",
		meta.ProjectConfigFile, meta.AppName, envutil.Key(constants.SuffixProjectDir))
}

// findProjectDir searches upward from the given path for a directory
// containing deploykit.yaml.
func findProjectDir(path string) (string, bool) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, meta.ProjectConfigFile)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
