// Where: internal/config/validate_test.go
// What: Tests for deploykit.yaml schema validation.
// Why: Bad configs must fail fast with a schema error.
package config

import (
	"strings"
	"testing"
)

func TestValidateProjectConfigAccepts(t *testing.T) {
	cases := map[string]string{
		"minimal": "project: people-cards\n",
		"full": strings.Join([]string{
			"version: 1",
			"project: fraud-or-not",
			"aws_region: us-west-1",
			"aws_profile: fon-deploy",
			"environments: [development, staging, production]",
			"lambda:",
			"  source_dir: lambda",
			"  handler: app.handler",
			"  runtime: python3.12",
			"frontend:",
			"  build_dir: out",
			"  bucket: fon-stg-frontend",
			"  distribution_id: E2ABCDEF123",
			"tables:",
			"  - name: reports",
			"    billing_mode: PAY_PER_REQUEST",
			"    hash_key: {name: report_id, type: S}",
			"    range_key: {name: submitted_at, type: S}",
			"    global_indexes:",
			"      - name: status-index",
			"        hash_key: {name: status, type: S}",
			"        projection: ALL",
			"",
		}, "\n"),
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if err := ValidateProjectConfig([]byte(content)); err != nil {
				t.Fatalf("expected valid config: %v", err)
			}
		})
	}
}

func TestValidateProjectConfigRejects(t *testing.T) {
	cases := map[string]string{
		"missing project":    "aws_region: us-west-1\n",
		"unknown field":      "project: people-cards\nregion: us-west-1\n",
		"uppercase project":  "project: PeopleCards\n",
		"table without keys": "project: people-cards\ntables:\n  - name: broken\n",
		"bad key type":       "project: people-cards\ntables:\n  - name: t\n    hash_key: {name: id, type: X}\n",
		"bad billing mode":   "project: people-cards\ntables:\n  - name: t\n    billing_mode: on-demand\n    hash_key: {name: id, type: S}\n",
		"bad projection":     "project: people-cards\ntables:\n  - name: t\n    hash_key: {name: id, type: S}\n    global_indexes:\n      - name: i\n        hash_key: {name: k, type: S}\n        projection: SOME\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if err := ValidateProjectConfig([]byte(content)); err == nil {
				t.Fatal("expected a schema error")
			}
		})
	}
}
