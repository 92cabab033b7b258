package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSubcommand is returned when no subcommand is provided
var ErrNoSubcommand = errors.New("missing subcommand: usage: guardrail <init|lint|compile|export-audit|templates> [flags]")

// ErrMissingFlagValue is returned when a flag requires a value but none is provided
var ErrMissingFlagValue = errors.New("flag requires a value")

// Subcommand represents the CLI subcommand
type Subcommand string

const (
	SubcommandInit        Subcommand = "init"
	SubcommandLint        Subcommand = "lint"
	SubcommandCompile     Subcommand = "compile"
	SubcommandExportAudit Subcommand = "export-audit"
	SubcommandTemplates   Subcommand = "templates"
)

// Command represents the parsed CLI input
type Command struct {
	Subcommand Subcommand

	SpecPath     string // --spec <path>
	OutPath      string // --out <dir or file>
	Blockchain   string // --blockchain <target>
	WithOracle   bool   // --with-oracle
	ContractName string // --contract-name <name>
	Template     string // --template <id>
	Query        string // --query <q>
	Force        bool   // --force
}

var knownSubcommands = map[string]Subcommand{
	"init":         SubcommandInit,
	"lint":         SubcommandLint,
	"compile":      SubcommandCompile,
	"export-audit": SubcommandExportAudit,
	"templates":    SubcommandTemplates,
}

// ParseArgs parses CLI arguments into a Command.
// It expects args to be os.Args[1:] (excluding the program name).
func ParseArgs(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrNoSubcommand
	}

	sub, ok := knownSubcommands[args[0]]
	if !ok {
		return Command{}, fmt.Errorf("unknown subcommand '%s': %w", args[0], ErrNoSubcommand)
	}
	cmd := Command{Subcommand: sub}

	i := 1
	for i < len(args) {
		arg := args[i]

		if !strings.HasPrefix(arg, "--") {
			return Command{}, fmt.Errorf("unexpected argument '%s'", arg)
		}
		flagName := strings.TrimPrefix(arg, "--")

		switch flagName {
		case "spec":
			value, next, err := flagValue(args, i)
			if err != nil {
				return Command{}, err
			}
			cmd.SpecPath, i = value, next
		case "out":
			value, next, err := flagValue(args, i)
			if err != nil {
				return Command{}, err
			}
			cmd.OutPath, i = value, next
		case "blockchain":
			value, next, err := flagValue(args, i)
			if err != nil {
				return Command{}, err
			}
			cmd.Blockchain, i = value, next
		case "contract-name":
			value, next, err := flagValue(args, i)
			if err != nil {
				return Command{}, err
			}
			cmd.ContractName, i = value, next
		case "template":
			value, next, err := flagValue(args, i)
			if err != nil {
				return Command{}, err
			}
			cmd.Template, i = value, next
		case "query":
			value, next, err := flagValue(args, i)
			if err != nil {
				return Command{}, err
			}
			cmd.Query, i = value, next
		case "with-oracle":
			cmd.WithOracle = true
		case "force":
			cmd.Force = true
		default:
			return Command{}, fmt.Errorf("unknown flag '--%s'", flagName)
		}
		i++
	}

	return cmd, nil
}

// flagValue returns the value following args[i] and the index it was
// consumed at.
func flagValue(args []string, i int) (string, int, error) {
	if i+1 >= len(args) {
		return "", i, fmt.Errorf("--%s: %w", strings.TrimPrefix(args[i], "--"), ErrMissingFlagValue)
	}
	return args[i+1], i + 1, nil
}
