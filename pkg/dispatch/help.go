package dispatch

import (
	"context"
	"io"
	"slices"

	"github.com/urfave/cli/v3"
)

// helpTokens are recognised anywhere after the command path.
var helpTokens = []string{"-h", "--help"}

func wantsHelp(tokens []string) bool {
	for _, tok := range tokens {
		if tok == "--" {
			return false
		}
		if slices.Contains(helpTokens, tok) {
			return true
		}
	}

	return false
}

// Help renders help for spec to w using urfave/cli's templates. extra
// commands are listed at the root but not dispatched through the registry.
func (r *Registry) Help(ctx context.Context, w io.Writer, spec *CommandSpec, extra ...*cli.Command) error {
	root := toCLI(r.root)
	root.Commands = append(append([]*cli.Command(nil), extra...), root.Commands...)
	root.Writer = w
	root.ErrWriter = w
	root.HideVersion = true
	root.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	root.OnUsageError = func(_ context.Context, _ *cli.Command, err error, _ bool) error { return err }

	args := append([]string{root.Name}, spec.Path()...)
	return root.Run(ctx, append(args, "--help"))
}

func toCLI(spec *CommandSpec) *cli.Command {
	cmd := &cli.Command{
		Name:            spec.Name,
		Usage:           spec.Usage,
		Description:     spec.Description,
		HideHelpCommand: true,
	}

	for _, o := range spec.Options {
		cmd.Flags = append(cmd.Flags, o.Flag())
	}

	for _, c := range spec.Commands {
		cmd.Commands = append(cmd.Commands, toCLI(c))
	}

	if spec.IsLeaf() {
		cmd.Action = func(context.Context, *cli.Command) error { return nil }
	}

	return cmd
}
