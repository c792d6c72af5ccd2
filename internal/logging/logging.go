// Where: internal/logging/logging.go
// What: Logger setup on top of apex/log.
// Why: One compact diagnostic stream for every package, separate from command output.
package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// EnvLogLevel selects the log level (trace through fatal), default info.
const EnvLogLevel = "DEPLOYKIT_LOG"

// Init installs the compact handler and applies the level from the
// environment. Verbose forces debug regardless of the environment.
func Init(verbose bool) {
	level := parseLevel(os.Getenv(EnvLogLevel))
	if verbose {
		level = log.DebugLevel
	}
	log.SetHandler(&CompactHandler{})
	log.SetLevel(level)
}

func parseLevel(value string) log.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace", "debug":
		return log.DebugLevel
	case "info", "":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// CompactHandler writes "2006-01-02 15:04:05 L message key=value" lines
// to stderr so diagnostics never interleave with command output on stdout.
type CompactHandler struct{}

// HandleLog implements the log.Handler interface.
func (h *CompactHandler) HandleLog(e *log.Entry) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := "?"
	switch e.Level {
	case log.DebugLevel:
		level = "D"
	case log.InfoLevel:
		level = "I"
	case log.WarnLevel:
		level = "W"
	case log.ErrorLevel:
		level = "E"
	case log.FatalLevel:
		level = "F"
	}

	fmt.Fprintf(os.Stderr, "%s %s %s%s\n", timestamp, level, e.Message, formatFields(e))
	return nil
}

func formatFields(e *log.Entry) string {
	if len(e.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, e.Fields[key])
	}
	return b.String()
}

// Base returns the process-wide logger used when a package does not
// receive an explicit one.
func Base() log.Interface {
	return log.Log
}
