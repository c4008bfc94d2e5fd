package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/datacoves/dbt-coves/pkg/executor"
	"github.com/datacoves/dbt-coves/pkg/logging"
	"github.com/datacoves/dbt-coves/pkg/options"
	"github.com/datacoves/dbt-coves/pkg/ui"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Option names shared by every task.
const (
	optLogLevel    = dispatch.OptionLogLevel
	optVerbose     = dispatch.OptionVerbose
	optConfigPath  = dispatch.OptionConfigPath
	optProjectDir  = "project-dir"
	optProfilesDir = "profiles-dir"
	optTarget      = "target"
	optVars        = "vars"
	optTemplates   = "templates"
)

// profilesFallbackDir is where dbt looks for profiles.yml by default.
const profilesFallbackDir = "~/.dbt"

// commandRunner runs the external programs the tasks drive (git, dbt,
// sqlfluff, pre-commit). *executor.Executor satisfies it.
type commandRunner interface {
	Run(ctx context.Context, c executor.Cmd) error
	Output(ctx context.Context, c executor.Cmd) (string, error)
}

// sharedOptions returns a fresh copy of the options every command accepts.
func sharedOptions() []options.Option {
	return []options.Option{
		{
			Name:   optLogLevel,
			Usage:  "Overrides the log level (debug, info, warning, error)",
			EnvVar: "LOGGING_LEVEL",
			Check: func(s string) error {
				_, err := logging.ParseLevel(s)
				return err
			},
		},
		{
			Name:    optVerbose,
			Aliases: []string{"v"},
			Usage:   "Show full error details, including stack traces",
			Kind:    options.Bool,
		},
		{
			Name:        optConfigPath,
			Usage:       "Directory containing .dbt_coves.yml or .dbt_coves/config.yml",
			EnvVar:      "DBT_COVES_CONFIG",
			Kind:        options.Path,
			Constraint:  options.MustBeDir,
			Default:     ".",
			DefaultText: "current directory",
		},
		{
			Name:        optProjectDir,
			Usage:       "Directory containing dbt_project.yml",
			EnvVar:      "DBT_PROJECT_DIR",
			Kind:        options.Path,
			Constraint:  options.MustBeDir,
			Default:     ".",
			DefaultText: "current directory",
		},
		{
			Name:        optProfilesDir,
			Usage:       "Directory containing profiles.yml; " + profilesFallbackDir + " when neither the flag nor $DBT_PROFILES_DIR is set",
			EnvVar:      "DBT_PROFILES_DIR",
			Kind:        options.Path,
			Constraint:  options.MustBeDir,
			DefaultText: profilesFallbackDir,
		},
		{
			Name:    optTarget,
			Aliases: []string{"t"},
			Usage:   "Which target to load for the given profile",
		},
		{
			Name:  optVars,
			Usage: "Supply variables to your dbt project, as a YAML mapping",
			Kind:  options.YAML,
		},
	}
}

func templatesOption() options.Option {
	return options.Option{
		Name:       optTemplates,
		Usage:      "Location of your sqlfluff, ci and pre-commit config templates",
		Kind:       options.Path,
		Constraint: options.MustBeDir,
	}
}

func withOptions(extra ...options.Option) []options.Option {
	return append(sharedOptions(), extra...)
}

// taskContext bundles what most tasks derive from dispatch.Params.
type taskContext struct {
	opts    *options.Resolved
	env     options.Env
	console *ui.Console
	logger  *slog.Logger
	runner  commandRunner
}

func newTaskContext(p dispatch.Params, runner commandRunner) *taskContext {
	env := p.Env
	if env == nil {
		env = options.OSEnv
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &taskContext{
		opts:    p.Options,
		env:     env,
		console: ui.New(p.Stdout),
		logger:  logger,
		runner:  runner,
	}
}

func (t *taskContext) getenv(key string) string {
	v, _ := t.env(key)
	return v
}

func (t *taskContext) projectDir() string {
	if dir := t.opts.Path(optProjectDir); dir != "" {
		return dir
	}
	return "."
}

func (t *taskContext) home() (string, error) {
	if home := t.getenv("HOME"); home != "" {
		return home, nil
	}

	home, err := os.UserHomeDir()
	return home, errors.Wrap(err, "failed to determine home directory")
}

// profilesDir is --profiles-dir when given, else dbt's conventional ~/.dbt.
func (t *taskContext) profilesDir() (string, error) {
	if dir := t.opts.Path(optProfilesDir); dir != "" {
		return dir, nil
	}

	home, err := t.home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dbt"), nil
}

// dbtArgs appends the dbt flags shared by every dbt invocation.
func (t *taskContext) dbtArgs(args ...string) ([]string, error) {
	profiles, err := t.profilesDir()
	if err != nil {
		return nil, err
	}

	args = append(args, "--project-dir", t.projectDir(), "--profiles-dir", profiles)
	if target := t.opts.String(optTarget); target != "" {
		args = append(args, "--target", target)
	}

	if vars := t.opts.Vars(optVars); vars != nil {
		data, err := yaml.Marshal(vars)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode --vars")
		}
		args = append(args, "--vars", string(data))
	}

	return args, nil
}

// runTool runs an external program in the project dir, streaming its output.
// A nonzero exit is reported and becomes the task's exit code; a program that
// cannot be started is a task failure.
func (t *taskContext) runTool(ctx context.Context, task, name string, args ...string) (int, error) {
	c := executor.Cmd{
		Dir:    t.projectDir(),
		Name:   name,
		Args:   args,
		Stdout: t.console.Writer(),
		Stderr: t.console.Writer(),
	}

	t.logger.Debug("running tool", "cmd", c.String())
	err := t.runner.Run(ctx, c)

	var exit *executor.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exit):
		t.console.Println(t.console.Fail(fmt.Sprintf("%s exited with status %d", name, exit.Code)))
		return exit.Code, nil
	default:
		return 1, &dispatch.TaskExecutionError{Task: task, Err: err}
	}
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return []string{list}
	}

	return nil
}
