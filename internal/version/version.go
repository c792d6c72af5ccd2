// Where: internal/version/version.go
// What: Build version reporting.
// Why: Surface the VCS revision embedded by the Go toolchain.
package version

import (
	"fmt"
	"runtime/debug"
)

// GetVersion returns the version string for the binary.
// Release builds report the short VCS revision, suffixed with "(dirty)"
// when the working tree had local modifications. Builds without embedded
// VCS data report "dev".
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	revision := ""
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if dirty {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}
