// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/apex/log"
	"github.com/joho/godotenv"

	"github.com/triadops/deploykit/internal/config"
	"github.com/triadops/deploykit/internal/logging"
	"github.com/triadops/deploykit/internal/naming"
	"github.com/triadops/deploykit/internal/version"
)

// Dependencies holds all injected dependencies required for CLI command
// execution. This structure enables dependency injection for testing and
// allows swapping implementations of various subsystems.
type Dependencies struct {
	WorkDir  string
	Out      io.Writer
	Logger   log.Interface
	Now      func() time.Time
	Prompter Prompter

	Bucket   BucketDeps
	Tables   TablesDeps
	Frontend FrontendDeps
	Local    LocalDeps
	Identity IdentityDeps
}

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Project    string `short:"p" help:"Project name (default: $PROJECT_NAME or deploykit.yaml)"`
	EnvFlag    string `short:"e" name:"env" help:"Deployment environment (default: $ENVIRONMENT or staging)"`
	Region     string `help:"AWS region (default: $AWS_REGION or deploykit.yaml)"`
	Profile    string `help:"AWS shared config profile"`
	ConfigFile string `short:"c" name:"config-file" help:"Path to deploykit.yaml"`
	EnvFile    string `name:"env-file" help:"Path to .env file"`
	Verbose    bool   `short:"v" help:"Enable debug logging"`

	Name     NameCmd     `cmd:"" help:"Work with canonical resource names"`
	Bucket   BucketCmd   `cmd:"" help:"Manage deployment bucket rotation"`
	Tables   TablesCmd   `cmd:"" help:"Manage DynamoDB tables"`
	Lambda   LambdaCmd   `cmd:"" help:"Package and check Lambda artifacts"`
	Frontend FrontendCmd `cmd:"" help:"Deploy frontend builds"`
	Local    LocalCmd    `cmd:"" help:"Run the local DynamoDB stack"`
	Config   ConfigCmd   `cmd:"" name:"config" help:"Manage project configuration"`
	Init     InitCmd     `cmd:"" help:"Interactive project setup"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

type InitCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	if deps.Logger == nil {
		deps.Logger = logging.Base()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	if err := config.EnsureGlobalConfig(); err != nil {
		return exitWithError(out, err)
	}

	// Handle no arguments: show current identity and configuration
	if len(args) == 0 {
		return runNoArgs(deps, out)
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return handleParseError(args, err, deps, out)
	}

	if cli.Verbose {
		logging.Init(true)
	}

	// Load environment file if provided or if .env exists in current directory
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
			}
		}
	}

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

type prefixHandler struct {
	prefix  string
	handler commandHandler
}

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"bucket list":     runBucketList,
		"bucket next":     runBucketNext,
		"bucket create":   runBucketCreate,
		"bucket rotate":   runBucketRotate,
		"bucket cleanup":  runBucketCleanup,
		"bucket latest":   runBucketLatest,
		"tables ensure":   runTablesEnsure,
		"tables list":     runTablesList,
		"local up":        runLocalUp,
		"local down":      runLocalDown,
		"local status":    runLocalStatus,
		"config show":     runConfigShow,
		"config validate": runConfigValidate,
		"config init":     runConfigInit,
		"init":            runInitWizard,
		"version":         func(cli CLI, _ Dependencies, out io.Writer) int { return runVersion(cli, out) },
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}

	prefixHandlers := []prefixHandler{
		{prefix: "name format", handler: runNameFormat},
		{prefix: "name validate", handler: runNameValidate},
		{prefix: "name parse", handler: runNameParse},
		{prefix: "name convert", handler: runNameConvert},
		{prefix: "tables seed", handler: runTablesSeed},
		{prefix: "lambda package", handler: runLambdaPackage},
		{prefix: "lambda validate", handler: runLambdaValidate},
		{prefix: "frontend deploy", handler: runFrontendDeploy},
	}

	for _, entry := range prefixHandlers {
		if strings.HasPrefix(command, entry.prefix) {
			return entry.handler(cli, deps, out), true
		}
	}

	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(_ CLI, out io.Writer) int {
	fmt.Fprintln(out, version.GetVersion())
	return 0
}

// commandName extracts the first non-flag argument from the command line,
// which represents the command name. Recognizes and skips known flag pairs.
func commandName(args []string) string {
	skipNext := false
	for _, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			switch arg {
			case "-p", "--project", "-e", "--env", "--region", "--profile",
				"-c", "--config-file", "--env-file":
				skipNext = true
			}
			continue
		}
		return arg
	}
	return ""
}

// handleParseError provides user-friendly error messages for parse failures.
func handleParseError(args []string, err error, deps Dependencies, out io.Writer) int {
	errStr := err.Error()

	if strings.Contains(errStr, "expected one of") {
		switch commandName(args) {
		case "bucket":
			return runBucketList(CLI{}, deps, out)
		case "tables":
			return runTablesList(CLI{}, deps, out)
		case "local":
			return runLocalStatus(CLI{}, deps, out)
		case "config":
			return runConfigShow(CLI{}, deps, out)
		}
	}

	if strings.Contains(errStr, "expected") {
		switch cmd := commandName(args); {
		case strings.HasPrefix(cmd, "name") && strings.Contains(errStr, "<"):
			return exitWithSuggestion(out, "Resource name required.", []string{
				"deploykit name format <resource>",
				"deploykit name validate <name>",
				"deploykit name parse <name>",
				"deploykit name convert <name>",
			})
		case strings.HasPrefix(cmd, "lambda") && strings.Contains(errStr, "<"):
			return exitWithSuggestion(out, "Archive path required.", []string{
				"deploykit lambda package [<source-dir>]",
				"deploykit lambda validate <archive.zip> --handler module.function",
			})
		}
	}

	return exitWithError(out, err)
}

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, err)
	return 1
}

func exitWithSuggestion(out io.Writer, message string, suggestions []string) int {
	fmt.Fprintln(out, message)
	for _, suggestion := range suggestions {
		fmt.Fprintf(out, "  %s\n", suggestion)
	}
	return 1
}

func knownProjectList() string {
	return strings.Join(naming.KnownProjects(), ", ")
}
