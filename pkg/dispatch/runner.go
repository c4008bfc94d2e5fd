package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/config"
	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/diag"
	"github.com/datacoves/dbt-coves/pkg/logging"
	"github.com/datacoves/dbt-coves/pkg/options"
	"github.com/urfave/cli/v3"
)

// Option names the runner itself consumes when a command declares them.
const (
	OptionVerbose    = "verbose"
	OptionLogLevel   = "log-level"
	OptionConfigPath = "config-path"
)

// versionTokens short-circuit dispatch and print the version banner.
var versionTokens = []string{"version", "--version", "-V"}

type (
	// VersionFunc prints the version banner.
	VersionFunc func(ctx context.Context, w io.Writer) error

	// Runner executes one invocation: resolve the command, parse its
	// options, load the project config when needed, then build and run the
	// task.
	Runner struct {
		Registry *Registry
		Open     config.Opener
		Reporter *diag.Reporter
		Logger   *slog.Logger
		Version  VersionFunc
		Env      options.Env
		Stdout   io.Writer
		Stderr   io.Writer

		// ConfigureLogging applies the --log-level value. It defaults to
		// logging.Configure.
		ConfigureLogging func(slog.Level) bool
	}
)

// Run dispatches args, the process arguments without the program name.
//
// Resolution, option and config errors are returned as is, never wrapped,
// so the caller's reporter sees their exit codes. The task's own result is
// returned unchanged.
func (r *Runner) Run(ctx context.Context, args []string) (int, error) {
	if len(args) > 0 && slices.Contains(versionTokens, args[0]) {
		if r.Version == nil {
			_, err := fmt.Fprintln(r.stdout(), consts.AppName)
			return consts.ExitOK, err
		}
		if err := r.Version(ctx, r.stdout()); err != nil {
			return consts.ExitFailure, err
		}
		return consts.ExitOK, nil
	}

	spec, rest, err := r.Registry.Resolve(args)
	if err != nil {
		return diag.ExitCode(err), err
	}

	if wantsHelp(rest) {
		return consts.ExitOK, r.help(ctx, r.stdout(), spec)
	}

	if !spec.IsLeaf() {
		if len(rest) == 0 {
			if err := r.help(ctx, r.stderr(), spec); err != nil {
				return consts.ExitFailure, err
			}
			return consts.ExitUsage, nil
		}

		err := &MissingCommandError{
			Command: strings.Join(append([]string{consts.AppName}, spec.Path()...), " "),
			Choices: spec.ChildNames(),
		}
		return err.ExitCode(), err
	}

	if r.Reporter != nil {
		r.Reporter.SetVerbose(verboseRequested(spec.Options, rest))
	}

	opts, err := options.Parse(spec.Options, rest, r.env())
	if err != nil {
		return diag.ExitCode(err), err
	}

	if r.Reporter != nil {
		r.Reporter.SetVerbose(opts.Bool(OptionVerbose))
	}

	var store *config.Store
	if spec.NeedsConfig {
		dir := "."
		if opts.Has(OptionConfigPath) {
			dir = opts.Path(OptionConfigPath)
		}

		store = r.open()(dir)
		if _, err := store.Load(); err != nil {
			return diag.ExitCode(err), err
		}
	}

	if opts.Has(OptionLogLevel) {
		if lvl, err := logging.ParseLevel(opts.String(OptionLogLevel)); err == nil {
			r.configure()(lvl)
		}
	}

	logger := r.logger().With("command", spec.FullName())
	task, err := spec.New(Params{
		Options: opts,
		Config:  store,
		Env:     r.env(),
		Stdout:  r.stdout(),
		Stderr:  r.stderr(),
		Logger:  logger,
	})
	if err != nil {
		return diag.ExitCode(err), err
	}

	logger.Debug("running task", "config", store != nil)
	return task.Run(ctx)
}

func (r *Runner) help(ctx context.Context, w io.Writer, spec *CommandSpec) error {
	return r.Registry.Help(ctx, w, spec, &cli.Command{
		Name:  "version",
		Usage: "Show the dbt-coves version",
	})
}

func (r *Runner) env() options.Env {
	if r.Env == nil {
		return options.OSEnv
	}
	return r.Env
}

func (r *Runner) open() config.Opener {
	if r.Open == nil {
		return config.Open
	}
	return r.Open
}

func (r *Runner) configure() func(slog.Level) bool {
	if r.ConfigureLogging == nil {
		return logging.Configure
	}
	return r.ConfigureLogging
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.New(r.stderr())
	}
	return r.Logger
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

// verboseRequested scans raw tokens for the verbose flag so that errors
// raised while parsing the remaining options are already reported in full.
func verboseRequested(decls []options.Option, tokens []string) bool {
	index := make(map[string]options.Option)
	for _, d := range decls {
		for _, n := range d.Names() {
			index[n] = d
		}
	}

	verbose := false
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "--" {
			break
		}
		if !strings.HasPrefix(tok, "-") {
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(tok, "-"), "=")
		d, ok := index[name]
		switch {
		case !ok:
		case d.Name == OptionVerbose && hasValue:
			verbose, _ = strconv.ParseBool(value)
		case d.Name == OptionVerbose:
			verbose = true
		case d.Kind != options.Bool && !hasValue:
			i++
		}
	}

	return verbose
}
