// Package envutil resolves tool environment variables.
package envutil

import (
	"os"
	"strings"

	"github.com/triadops/deploykit/internal/meta"
)

// Key constructs a tool environment variable name from a suffix.
// Example: Key("CONFIG_PATH") returns "DEPLOYKIT_CONFIG_PATH".
func Key(suffix string) string {
	return meta.EnvPrefix + "_" + suffix
}

// Get retrieves a tool environment variable by suffix.
// Example: Get("CONFIG_PATH") returns the value of DEPLOYKIT_CONFIG_PATH.
func Get(suffix string) string {
	return os.Getenv(Key(suffix))
}

// GetDefault retrieves a plain environment variable, falling back when it
// is unset or blank. Used for the variables shared with the deploy scripts.
func GetDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}
