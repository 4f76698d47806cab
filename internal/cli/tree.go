// Package cli defines the declarative command tree and compiles it to
// cobra. Nodes are a tagged variant: a Group has children and no handler, a
// Leaf has arguments and a handler. Every leaf automatically accepts the
// shared --region, --format, and --sudo flags.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Shared flags injected into every leaf command.
const (
	FlagRegion = "region"
	FlagFormat = "format"
	FlagSudo   = "sudo"
)

// formatChoices are the accepted --format values.
var formatChoices = []string{"json", "yaml", "table", "wide"}

// Arg declares one flag of a leaf command as a plain data value, so shared
// declarations (cluster id, organization id) can be reused across leaves.
type Arg struct {
	Name      string
	Shorthand string
	Help      string
	Required  bool
	Default   string
	Choices   []string

	// Bool declares a boolean flag; Default and Choices are ignored.
	Bool bool
}

// Args gives a handler typed access to the parsed flag values of its leaf.
type Args struct {
	flags *pflag.FlagSet
}

// String returns a string flag value.
func (a *Args) String(name string) string {
	v, _ := a.flags.GetString(name)
	return v
}

// Bool returns a boolean flag value.
func (a *Args) Bool(name string) bool {
	v, _ := a.flags.GetBool(name)
	return v
}

// Changed reports whether the flag was set explicitly.
func (a *Args) Changed(name string) bool {
	return a.flags.Changed(name)
}

// Region returns the shared --region override.
func (a *Args) Region() string { return a.String(FlagRegion) }

// Format returns the shared --format override.
func (a *Args) Format() string { return a.String(FlagFormat) }

// Sudo returns the shared --sudo flag.
func (a *Args) Sudo() bool { return a.Bool(FlagSudo) }

// Handler runs a resolved leaf command with its parsed arguments.
type Handler func(ctx context.Context, args *Args) error

// Command is one node of the command tree. Construct with Group or Leaf;
// the two cases cannot be mixed.
type Command struct {
	use      string
	help     string
	children []*Command
	args     []Arg
	run      Handler
}

// Group creates an internal node holding subcommands.
func Group(use, help string, children ...*Command) *Command {
	if len(children) == 0 {
		panic(fmt.Sprintf("command group %q has no children", use))
	}
	return &Command{use: use, help: help, children: children}
}

// Leaf creates a terminal node bound to a handler.
func Leaf(use, help string, args []Arg, run Handler) *Command {
	if run == nil {
		panic(fmt.Sprintf("leaf command %q has no handler", use))
	}
	return &Command{use: use, help: help, args: args, run: run}
}

// Build compiles the tree into an executable cobra command. Usage errors
// come back as *UsageError so the entry point can map them to exit code 2.
func Build(root *Command, version string) *cobra.Command {
	cmd := compile(root)
	cmd.Version = version
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &UsageError{Path: c.CommandPath(), Err: err, Usage: c.UsageString()}
	})
	return cmd
}

func compile(node *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   node.use,
		Short: node.help,
	}

	if node.run == nil {
		// Group: invoked bare or with an unknown subcommand it prints its
		// help and stops informationally. ArbitraryArgs keeps cobra from
		// turning an unknown token into a hard error.
		cmd.Args = cobra.ArbitraryArgs
		cmd.RunE = func(c *cobra.Command, args []string) error {
			return c.Help()
		}
		for _, child := range node.children {
			cmd.AddCommand(compile(child))
		}
		return cmd
	}

	declareFlags(cmd, node.args)

	run := node.run
	args := node.args
	cmd.RunE = func(c *cobra.Command, _ []string) error {
		if err := validateRequired(c, args); err != nil {
			return &UsageError{Path: c.CommandPath(), Err: err, Usage: c.UsageString()}
		}
		if err := validateChoices(c, args); err != nil {
			return &UsageError{Path: c.CommandPath(), Err: err, Usage: c.UsageString()}
		}
		return run(c.Context(), &Args{flags: c.Flags()})
	}
	return cmd
}

// declareFlags binds the leaf's declared arguments plus the shared defaults
// to the concrete flag set.
func declareFlags(cmd *cobra.Command, args []Arg) {
	for _, a := range args {
		if a.Bool {
			cmd.Flags().BoolP(a.Name, a.Shorthand, false, a.Help)
			continue
		}
		help := a.Help
		if len(a.Choices) > 0 {
			help = fmt.Sprintf("%s (one of: %s)", help, strings.Join(a.Choices, "|"))
		}
		if a.Required {
			help += " (required)"
		}
		cmd.Flags().StringP(a.Name, a.Shorthand, a.Default, help)
	}

	cmd.Flags().String(FlagRegion, "", "override the profile region for this call")
	cmd.Flags().String(FlagFormat, "", fmt.Sprintf("override the output format (one of: %s)", strings.Join(formatChoices, "|")))
	cmd.Flags().Bool(FlagSudo, false, "execute with superuser privileges")
}

// validateRequired checks required flags here rather than through cobra's
// MarkFlagRequired, whose failure bypasses the flag error func and would
// surface without the command path.
func validateRequired(cmd *cobra.Command, args []Arg) error {
	var missing []string
	for _, a := range args {
		if a.Required && !cmd.Flags().Changed(a.Name) {
			missing = append(missing, "--"+a.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// validateChoices enforces enumerated flag values, including the shared
// format flag.
func validateChoices(cmd *cobra.Command, args []Arg) error {
	for _, a := range args {
		if len(a.Choices) == 0 || a.Bool {
			continue
		}
		value, _ := cmd.Flags().GetString(a.Name)
		if value == "" || !cmd.Flags().Changed(a.Name) && a.Default == "" {
			continue
		}
		if !contains(a.Choices, value) {
			return fmt.Errorf("invalid value %q for --%s (one of: %s)", value, a.Name, strings.Join(a.Choices, "|"))
		}
	}

	if format, _ := cmd.Flags().GetString(FlagFormat); format != "" && !contains(formatChoices, format) {
		return fmt.Errorf("invalid value %q for --%s (one of: %s)", format, FlagFormat, strings.Join(formatChoices, "|"))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
