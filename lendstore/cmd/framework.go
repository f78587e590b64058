package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arthur-debert/lendstore/types"
)

// Command is one entry of the command table. The same table drives the one-shot CLI and
// the lines typed into the shell.
type Command struct {
	Group       string // Parent command ("book", "user", "checkout"), empty for top level
	Name        string
	Description string
	Args        []ArgSpec
	Flags       []FlagSpec
	NeedsActor  bool // Resolve --as (or the @chat-id prefix) before running
	Mutates     bool // Save after a one-shot run
	NoShell     bool // Not available inside the shell
	Fresh       bool // Start from an empty library instead of loading --db
	Run         func(s *session, inv *invocation) (any, error)
}

// ArgSpec defines a positional argument
type ArgSpec struct {
	Name        string
	Description string
	Required    bool
}

// FlagSpec defines an optional command flag. The type of Default picks the flag type.
type FlagSpec struct {
	Name        string
	Short       string
	Description string
	Default     any
}

// invocation carries what one run of a command needs besides the session.
type invocation struct {
	args  []string
	flags *pflag.FlagSet
	actor types.User
	// chatID is the acting member as typed, possibly empty.
	chatID string
}

func (inv *invocation) arg(i int) string {
	if i < len(inv.args) {
		return inv.args[i]
	}
	return ""
}

// operation names the command in error messages, e.g. "book add".
func (cmd *Command) operation() string {
	if cmd.Group == "" {
		return cmd.Name
	}
	return cmd.Group + " " + cmd.Name
}

// GenerateUsage creates the usage string for the command
func (cmd *Command) GenerateUsage() string {
	usage := cmd.Name
	for _, arg := range cmd.Args {
		if arg.Required {
			usage += fmt.Sprintf(" <%s>", arg.Name)
		} else {
			usage += fmt.Sprintf(" [%s]", arg.Name)
		}
	}
	return usage
}

// GenerateLongDescription creates detailed help text for the command
func (cmd *Command) GenerateLongDescription() string {
	var desc strings.Builder
	desc.WriteString(cmd.Description + "\n")

	if len(cmd.Args) > 0 {
		desc.WriteString("\nArguments:\n")
		for _, arg := range cmd.Args {
			required := ""
			if arg.Required {
				required = " (required)"
			}
			desc.WriteString(fmt.Sprintf("  %s: %s%s\n", arg.Name, arg.Description, required))
		}
	}
	if cmd.NeedsActor {
		desc.WriteString("\nActs as the member given by --as (or @chat-id in the shell).\n")
	}
	return desc.String()
}

func (cmd *Command) argsValidator() cobra.PositionalArgs {
	required := 0
	for _, arg := range cmd.Args {
		if arg.Required {
			required++
		}
	}
	return func(c *cobra.Command, args []string) error {
		if len(args) < required || len(args) > len(cmd.Args) {
			return NewUsageError(cmd.operation(),
				fmt.Sprintf("expected %d to %d arguments, got %d", required, len(cmd.Args), len(args)),
				"Usage: lendstore "+cmd.operationUsage())
		}
		return nil
	}
}

func (cmd *Command) operationUsage() string {
	if cmd.Group == "" {
		return cmd.GenerateUsage()
	}
	return cmd.Group + " " + cmd.GenerateUsage()
}

// runner executes a command spec once cobra has parsed its arguments.
type runner func(spec *Command, c *cobra.Command, args []string) error

// ToCobraCommand converts a Command to a cobra.Command
func (cmd *Command) ToCobraCommand(run runner) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   cmd.GenerateUsage(),
		Short: cmd.Description,
		Long:  cmd.GenerateLongDescription(),
		Args:  cmd.argsValidator(),
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmd, c, args)
		},
	}
	for _, flag := range cmd.Flags {
		addFlag(cobraCmd.Flags(), flag)
	}
	return cobraCmd
}

func addFlag(flags *pflag.FlagSet, flag FlagSpec) {
	switch def := flag.Default.(type) {
	case bool:
		flags.BoolP(flag.Name, flag.Short, def, flag.Description)
	case uint:
		flags.UintP(flag.Name, flag.Short, def, flag.Description)
	case uint32:
		flags.Uint32P(flag.Name, flag.Short, def, flag.Description)
	case string:
		flags.StringP(flag.Name, flag.Short, def, flag.Description)
	default:
		panic(fmt.Sprintf("flag %s: unsupported default %T", flag.Name, flag.Default))
	}
}

var groupDescriptions = map[string]string{
	"book":     "Manage the catalogue",
	"user":     "Manage members",
	"checkout": "Borrow and return books",
}

// buildCommands turns the command table into cobra commands, grouping subcommands under
// their parent. Commands marked NoShell are left out when shell is true.
func buildCommands(table []Command, run runner, shell bool) []*cobra.Command {
	var (
		top    []*cobra.Command
		groups = map[string]*cobra.Command{}
	)
	for i := range table {
		spec := &table[i]
		if shell && spec.NoShell {
			continue
		}
		cobraCmd := spec.ToCobraCommand(run)
		if spec.Group == "" {
			top = append(top, cobraCmd)
			continue
		}
		parent, ok := groups[spec.Group]
		if !ok {
			parent = &cobra.Command{Use: spec.Group, Short: groupDescriptions[spec.Group]}
			groups[spec.Group] = parent
			top = append(top, parent)
		}
		parent.AddCommand(cobraCmd)
	}
	return top
}
