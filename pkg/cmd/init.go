package cmd

import (
	"context"

	"github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/datacoves/dbt-coves/pkg/options"
	"github.com/datacoves/dbt-coves/pkg/project"
)

// initCmd scaffolds the dbt-coves layout into the project directory:
//
//   - .dbt_coves/config.yml: per task settings
//   - .dbt_coves/templates/: editable copies of the built in templates
//
// Like the rest of the setup commands it is idempotent and never overwrites
// an existing file, and it does not need a config file to exist.
//
//	dbt-coves init --project-dir ./transform
func initCmd() *dispatch.CommandSpec {
	return &dispatch.CommandSpec{
		Name:  "init",
		Usage: "Initializes a new dbt-coves project",
		Options: withOptions(options.Option{
			Name:  "skip-templates",
			Usage: "Do not copy the default templates into .dbt_coves/templates",
			Kind:  options.Bool,
		}),
		New: func(p dispatch.Params) (dispatch.Task, error) {
			tc := newTaskContext(p, nil)
			skip := p.Options.Bool("skip-templates")

			return dispatch.TaskFunc(func(context.Context) (int, error) {
				proj := project.New(tc.projectDir())
				created, err := proj.Initialize(project.InitOptions{SkipTemplates: skip})
				if err != nil {
					return 1, &dispatch.TaskExecutionError{Task: "init", Err: err}
				}

				if len(created) == 0 {
					tc.console.Found(".dbt_coves")
					return 0, nil
				}

				for _, path := range created {
					tc.console.Row(path, tc.console.Success("CREATED"))
				}
				tc.console.Println("Initialized dbt-coves in " + proj.Root())
				return 0, nil
			}), nil
		},
	}
}
