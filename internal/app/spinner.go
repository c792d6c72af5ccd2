// Where: internal/app/spinner.go
// What: Progress spinner for slow AWS calls.
// Why: Rotation and table creation can take tens of seconds; show life.
package app

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"

	"github.com/triadops/deploykit/internal/constants"
	"github.com/triadops/deploykit/internal/envutil"
)

// isTerminal reports whether the file refers to a terminal device.
var isTerminal = func(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// interactiveOut reports whether spinners may draw on the writer.
// DEPLOYKIT_INTERACTIVE forces the answer either way; otherwise the
// writer must be a terminal.
func interactiveOut(out io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(envutil.Get(constants.SuffixInteractive))) {
	case "0", "false", "no":
		return false
	case "1", "true", "yes":
		return true
	}

	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(file)
}

// startSpinner shows a progress message until the returned stop function
// runs. On non-interactive writers both are no-ops.
func startSpinner(out io.Writer, message string) func() {
	if !interactiveOut(out) {
		return func() {}
	}

	sp := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out))
	sp.Suffix = " " + message
	sp.Start()
	return sp.Stop
}
