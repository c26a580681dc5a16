// Package cmd implements the slides CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (plan, simulate, watch, probe).
package cmd

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/go-drift/slides/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(args []string) error
}

var rootCmd = &Command{
	Name:  "slides",
	Short: "slides - carousel planning and simulation",
	Long: `slides inspects and exercises drift carousel configurations.
It reads slides.yaml, derives the engine configuration and clone layout,
and can drive a simulated slide engine through the carousel controller.

Use "slides <command> --help" for more information about a command.`,
	Usage: "slides <command> [flags]",
}

var (
	commands    = make(map[string]*Command)
	subcommands []*Command

	// logger is replaced by a development logger when --verbose is given.
	logger = zap.NewNop()
)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	subcommands = append(subcommands, cmd)
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return run(os.Args[1:])
}

func run(args []string) error {
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	var filteredArgs []string
	verbose := false
	for _, arg := range args {
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Printf("slides version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--verbose":
			verbose = true
		default:
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
		defer func() { _ = l.Sync() }()
		defer errors.SetHandler(errors.SetHandler(errors.NewZapHandler(l)))
	}

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

// flagValue extracts "--name value" or "--name=value" from args and returns
// the remaining positional arguments.
func flagValue(args []string, name string) (string, []string, error) {
	var rest []string
	value := ""
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == name:
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("%s requires a value", name)
			}
			value = args[i+1]
			i++
		case strings.HasPrefix(arg, name+"="):
			value = strings.TrimPrefix(arg, name+"=")
		default:
			rest = append(rest, arg)
		}
	}
	return value, rest, nil
}

func printHelp(cmd *Command) {
	fmt.Println(cmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", cmd.Usage)
	fmt.Println()
	fmt.Println("Commands:")
	for _, sub := range subcommands {
		fmt.Printf("  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -h, --help           Show help for a command")
	fmt.Println("  -v, --version        Show version information")
	fmt.Println("  --verbose            Log controller lifecycle to stderr")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  slides plan                  Show mode, engine config and clones for ./slides.yaml")
	fmt.Println("  slides simulate --steps 12   Step a simulated carousel forward")
	fmt.Println("  slides watch gallery.yaml    Re-render on every config change")
}

func printCommandHelp(cmd *Command) {
	fmt.Println(cmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", cmd.Usage)
}
