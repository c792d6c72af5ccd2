// Where: internal/naming/naming.go
// What: Canonical resource naming for the project portfolio.
// Why: Every AWS resource name flows through one convention.
package naming

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Resource names follow {project}-{environment}-{resource} where project
// and environment are fixed 3-letter codes. The functions here are pure
// and safe for concurrent use.

var projectCodes = map[string]string{
	"fraud-or-not":   "fon",
	"people-cards":   "pec",
	"media-register": "mer",
}

var environmentCodes = map[string]string{
	"development": "dev",
	"dev":         "dev",
	"staging":     "stg",
	"stage":       "stg",
	"production":  "prd",
	"prod":        "prd",
}

var (
	resourcePattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	canonicalPattern = regexp.MustCompile(`^(fon|pec|mer)-(dev|stg|prd)-[a-z0-9-]+$`)

	// Legacy conversion: redundant trailing environment first, plain
	// environment suffix second.
	legacyDoubleEnvPattern = regexp.MustCompile(
		`^(fraud-or-not|people-cards|media-register)-(dev|development|staging|stage|prod|production)-(.+)-(dev|development|staging|stage|prod|production)$`)
	legacyEnvSuffixPattern = regexp.MustCompile(
		`^(fraud-or-not|people-cards|media-register)-(.+)-(dev|development|staging|stage|prod|production)$`)
)

// ResourceName holds the components of a canonical resource name.
type ResourceName struct {
	Project     string
	Environment string
	Resource    string
}

// KnownProjects returns the full names of the projects with fixed codes,
// sorted alphabetically.
func KnownProjects() []string {
	projects := make([]string, 0, len(projectCodes))
	for name := range projectCodes {
		projects = append(projects, name)
	}
	sort.Strings(projects)
	return projects
}

// ProjectCode maps a project name to its 3-letter code. Unknown projects
// fall back to the first three characters after stripping hyphens and
// lowercasing. Inputs too short for the fallback are an error.
func ProjectCode(project string) (string, error) {
	if code, ok := projectCodes[project]; ok {
		return code, nil
	}
	fallback := strings.ReplaceAll(project, "-", "")
	if len(fallback) < 3 {
		return "", fmt.Errorf("unknown project: %s", project)
	}
	return strings.ToLower(fallback[:3]), nil
}

// EnvironmentCode maps an environment spelling to dev, stg, or prd.
// Unknown environments fall back to the first three characters of the
// lowercased input.
func EnvironmentCode(environment string) (string, error) {
	env := strings.ToLower(environment)
	if code, ok := environmentCodes[env]; ok {
		return code, nil
	}
	if len(env) < 3 {
		return "", fmt.Errorf("unknown environment: %s", environment)
	}
	return env[:3], nil
}

// FormatResourceName builds {projectCode}-{envCode}-{resource}.
//
// Inputs of three characters or fewer are taken verbatim as codes and
// never looked up, so a short non-code input is passed through unchanged.
// The resource token must be lowercase letters, digits, and hyphens.
func FormatResourceName(project, environment, resource string) (string, error) {
	projectCode := project
	if len(project) > 3 {
		code, err := ProjectCode(project)
		if err != nil {
			return "", err
		}
		projectCode = code
	}

	envCode := environment
	if len(environment) > 3 {
		code, err := EnvironmentCode(environment)
		if err != nil {
			return "", err
		}
		envCode = code
	}

	if !resourcePattern.MatchString(resource) {
		return "", fmt.Errorf(
			"invalid resource name: %s: must contain only lowercase letters, numbers, and hyphens", resource)
	}

	return fmt.Sprintf("%s-%s-%s", projectCode, envCode, resource), nil
}

// ValidateResourceName reports whether name is canonical for one of the
// known projects and environments. Fallback codes produced for unknown
// projects do not validate; the check gatekeeps the official set.
func ValidateResourceName(name string) bool {
	return canonicalPattern.MatchString(name)
}

// ParseResourceName splits any {xxx}-{yyy}-{resource} name where the two
// leading segments are exactly three lowercase letters. It accepts codes
// outside the known set, unlike ValidateResourceName.
func ParseResourceName(name string) (ResourceName, bool) {
	// Positional parse: "abc-def-" is 8 bytes, resource needs at least one more.
	if len(name) < 9 || name[3] != '-' || name[7] != '-' {
		return ResourceName{}, false
	}
	project := name[:3]
	environment := name[4:7]
	if !isLowerAlpha(project) || !isLowerAlpha(environment) {
		return ResourceName{}, false
	}
	return ResourceName{
		Project:     project,
		Environment: environment,
		Resource:    name[8:],
	}, true
}

func isLowerAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// IsLegacyName reports whether name looks like a pre-convention resource
// name. Heuristic, not exhaustive.
func IsLegacyName(name string) bool {
	if hasLegacyAffixes(name, "fraud-or-not-", "-dev") ||
		hasLegacyAffixes(name, "people-cards-", "-prod") ||
		hasLegacyAffixes(name, "media-register-", "-staging") {
		return true
	}
	return strings.Contains(name, "-development-") ||
		strings.Contains(name, "-production-") ||
		strings.Contains(name, "-staging-")
}

func hasLegacyAffixes(name, prefix, suffix string) bool {
	return len(name) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(name, prefix) &&
		strings.HasSuffix(name, suffix)
}

// ConvertLegacyName rewrites a legacy name into canonical form. Two shapes
// are recognized, tried in order: a redundant trailing environment
// duplicate ({project}-{env}-{resource}-{env}, the duplicate is dropped)
// and a plain environment suffix ({project}-{resource}-{env}). Only full
// project names are accepted. Returns ok=false when neither shape fits.
func ConvertLegacyName(name string) (string, bool) {
	if m := legacyDoubleEnvPattern.FindStringSubmatch(name); m != nil {
		if canonical, err := FormatResourceName(m[1], m[2], m[3]); err == nil {
			return canonical, true
		}
	}
	if m := legacyEnvSuffixPattern.FindStringSubmatch(name); m != nil {
		if canonical, err := FormatResourceName(m[1], m[3], m[2]); err == nil {
			return canonical, true
		}
	}
	return "", false
}
