package cmd

import (
	"context"

	"github.com/datacoves/dbt-coves/pkg/dispatch"
)

var defaultLintPaths = []any{"models"}

// fix runs `sqlfluff fix` over the paths in fix.sqlfluff.paths.
func fix(runner commandRunner) *dispatch.CommandSpec {
	return &dispatch.CommandSpec{
		Name:        "fix",
		Usage:       "Runs linter fixes",
		Options:     sharedOptions(),
		NeedsConfig: true,
		New: func(p dispatch.Params) (dispatch.Task, error) {
			paths, err := p.Config.Lookup("fix", "sqlfluff", "paths", defaultLintPaths)
			if err != nil {
				return nil, err
			}

			tc := newTaskContext(p, runner)
			args := append([]string{"fix", "-f"}, stringList(paths)...)

			return dispatch.TaskFunc(func(ctx context.Context) (int, error) {
				return tc.runTool(ctx, "fix", "sqlfluff", args...)
			}), nil
		},
	}
}

type checkSettings struct {
	NoFix bool     `yaml:"no_fix"`
	Paths []string `yaml:"paths"`
}

// check runs the pre-commit hooks over the whole repository and then lints
// the models. Unless check.lint.no_fix is set, fixable violations are fixed
// before linting. The exit code is the first nonzero one.
func check(runner commandRunner) *dispatch.CommandSpec {
	return &dispatch.CommandSpec{
		Name:        "check",
		Usage:       "Runs pre-commit hooks and linters",
		Options:     sharedOptions(),
		NeedsConfig: true,
		New: func(p dispatch.Params) (dispatch.Task, error) {
			settings := checkSettings{NoFix: true, Paths: stringList(defaultLintPaths)}
			if err := p.Config.Decode("check", "lint", &settings); err != nil {
				return nil, err
			}

			tc := newTaskContext(p, runner)
			return dispatch.TaskFunc(func(ctx context.Context) (int, error) {
				code, err := tc.runTool(ctx, "check", "pre-commit", "run", "--all-files")
				if code != 0 || err != nil {
					return code, err
				}

				if !settings.NoFix {
					code, err := tc.runTool(ctx, "check", "sqlfluff", append([]string{"fix", "-f"}, settings.Paths...)...)
					if code != 0 || err != nil {
						return code, err
					}
				}

				return tc.runTool(ctx, "check", "sqlfluff", append([]string{"lint"}, settings.Paths...)...)
			}), nil
		},
	}
}
