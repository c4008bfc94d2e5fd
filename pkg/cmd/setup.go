package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/datacoves/dbt-coves/pkg/executor"
	"github.com/datacoves/dbt-coves/pkg/render"
)

// profileKeys are read from DBT_PROFILE_<KEY> to build profiles.yml.
var profileKeys = []string{
	"profile", "target", "type", "account", "host", "port", "user", "password",
	"role", "warehouse", "database", "dbname", "schema", "threads",
}

type (
	setupStep struct {
		name  string
		title string
		run   func(ctx context.Context, t *setupTask) error
	}

	setupTask struct {
		*taskContext
		renderer *render.Renderer
		steps    []setupStep
	}
)

var (
	stepSSH        = setupStep{"ssh", "SSH keys", setupSSH}
	stepGit        = setupStep{"git", "Git", setupGit}
	stepDbtProfile = setupStep{"dbt", "dbt profiles", setupDbtProfile}
	stepVSCode     = setupStep{"vs-code", "VS Code", setupVSCode}
	stepSqlfluff   = setupStep{"sqlfluff", "SQLFluff", setupSqlfluff}
	stepPreCommit  = setupStep{"pre-commit", "pre-commit", setupPreCommit}
	stepDbtDebug   = setupStep{"dbt-debug", "dbt connection", setupDbtDebug}
)

// allSteps is the fixed order of `setup all`.
func allSteps() []setupStep {
	return []setupStep{
		stepSSH,
		stepGit,
		stepDbtProfile,
		stepVSCode,
		stepSqlfluff,
		stepPreCommit,
		stepDbtDebug,
	}
}

// setup is the command group preparing a development environment. Every
// subcommand is idempotent: files that already exist are reported as FOUND
// and left alone.
//
//	dbt-coves setup all --templates ./templates
//	dbt-coves setup ssh
//	dbt-coves setup dbt --profiles-dir ~/.dbt
//
// The steps read USER_FULLNAME, USER_EMAIL, GIT_REPO_URL, WORKSPACE_PATH and
// DBT_PROFILE_* from the environment.
func setup(runner commandRunner) *dispatch.CommandSpec {
	leaf := func(name, usage string, templates bool, steps ...setupStep) *dispatch.CommandSpec {
		opts := sharedOptions()
		if templates {
			opts = withOptions(templatesOption())
		}

		return &dispatch.CommandSpec{
			Name:    name,
			Usage:   usage,
			Options: opts,
			New: func(p dispatch.Params) (dispatch.Task, error) {
				return newSetupTask(p, runner, steps), nil
			},
		}
	}

	return &dispatch.CommandSpec{
		Name:  "setup",
		Usage: "Sets up SSH keys, git repo, db connections and tooling config",
		Commands: []*dispatch.CommandSpec{
			leaf("all", "Sets up SSH keys, git repo, and db connections", true, allSteps()...),
			leaf("ssh", "Sets up SSH keys", false, stepSSH),
			leaf("git", "Sets up git user and clones the project repository", false, stepGit),
			leaf("dbt", "Sets up profiles.yml and checks the connection", false, stepDbtProfile, stepDbtDebug),
			leaf("vs-code", "Sets up VS Code settings", false, stepVSCode),
			leaf("sqlfluff", "Sets up the sqlfluff config", true, stepSqlfluff),
			leaf("pre-commit", "Sets up the pre-commit config", true, stepPreCommit),
		},
	}
}

func newSetupTask(p dispatch.Params, runner commandRunner, steps []setupStep) *setupTask {
	tc := newTaskContext(p, runner)

	templates := tc.opts.Path(optTemplates)
	if templates == "" {
		templates = filepath.Join(tc.projectDir(), filepath.FromSlash(consts.DefaultTemplatesDir))
	}

	return &setupTask{taskContext: tc, renderer: render.New(templates), steps: steps}
}

// Run executes the steps in order and stops at the first failure.
func (t *setupTask) Run(ctx context.Context) (int, error) {
	for _, step := range t.steps {
		t.console.Section(t.console.Success("▶") + " " + step.title)
		t.logger.Debug("setup step", "step", step.name)

		if err := step.run(ctx, t); err != nil {
			t.console.Row(step.title, t.console.Fail("FAILED ✗"))
			return 1, &dispatch.TaskExecutionError{Task: "setup " + step.name, Err: err}
		}
	}

	return 0, nil
}

func (t *setupTask) workspace() string {
	if ws := t.getenv(consts.EnvWorkspacePath); ws != "" {
		return ws
	}
	return t.projectDir()
}

// profileContext collects the DBT_PROFILE_* variables that are set.
func (t *setupTask) profileContext() map[string]any {
	ctx := make(map[string]any)
	for _, key := range profileKeys {
		if v := t.getenv(consts.EnvProfilePrefix + strings.ToUpper(key)); v != "" {
			ctx[key] = v
		}
	}
	return ctx
}

func (t *setupTask) renderInto(label, name, output string, data map[string]any) error {
	written, err := t.renderer.RenderFile(name, data, output)
	if err != nil {
		return err
	}

	if written {
		t.console.Row(label, t.console.Success("CREATED ✓"))
		return nil
	}

	t.console.Found(label)
	return nil
}

func setupGit(ctx context.Context, t *setupTask) error {
	settings := []struct{ key, env string }{
		{"user.name", consts.EnvUserFullname},
		{"user.email", consts.EnvUserEmail},
	}

	for _, s := range settings {
		if v := t.getenv(s.env); v != "" {
			if err := t.runner.Run(ctx, executor.Cmd{Name: "git", Args: []string{"config", "--global", s.key, v}}); err != nil {
				return err
			}
			t.console.Row("git "+s.key, t.console.Success(v))
			continue
		}

		current, err := t.runner.Output(ctx, executor.Cmd{Name: "git", Args: []string{"config", "--global", "--get", s.key}})
		if err == nil && current != "" {
			t.console.Found("git " + s.key)
			continue
		}
		t.console.Row("git "+s.key, t.console.Warn("NOT SET ($"+s.env+")"))
	}

	ws := t.workspace()
	if _, err := os.Stat(filepath.Join(ws, ".git")); err == nil {
		t.console.Found("git repo")
		return nil
	}

	url := t.getenv(consts.EnvGitRepoURL)
	if url == "" {
		t.console.Row("git repo", t.console.Warn("NOT SET ($"+consts.EnvGitRepoURL+")"))
		return nil
	}

	err := t.console.Spin("Cloning "+url, func() error {
		return t.runner.Run(ctx, executor.Cmd{
			Name:   "git",
			Args:   []string{"clone", url, ws},
			Stdout: t.console.Writer(),
			Stderr: t.console.Writer(),
		})
	})
	if err != nil {
		return err
	}

	t.console.Row("git repo", t.console.Success("CLONED ✓"))
	return nil
}

func setupDbtProfile(_ context.Context, t *setupTask) error {
	dir, err := t.profilesDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, consts.ProfilesFileName)
	if _, err := os.Stat(path); err == nil {
		t.console.Found(consts.ProfilesFileName)
		return nil
	}

	data := t.profileContext()
	if len(data) == 0 {
		t.console.Row(consts.ProfilesFileName, t.console.Warn("NOT SET ($"+consts.EnvProfilePrefix+"*)"))
		return nil
	}

	return t.renderInto(consts.ProfilesFileName, consts.ProfilesFileName, path, data)
}

func setupVSCode(_ context.Context, t *setupTask) error {
	profiles, err := t.profilesDir()
	if err != nil {
		return err
	}

	output := filepath.Join(t.workspace(), ".vscode", "settings.json")
	return t.renderInto(".vscode/settings.json", "settings.json", output, map[string]any{
		"profiles_dir": profiles,
	})
}

func setupSqlfluff(_ context.Context, t *setupTask) error {
	data := map[string]any{"project_dir": "./"}
	if adapter, ok := t.profileContext()["type"]; ok {
		data["dialect"] = adapter
	}

	return t.renderInto(".sqlfluff", ".sqlfluff", filepath.Join(t.projectDir(), ".sqlfluff"), data)
}

func setupPreCommit(_ context.Context, t *setupTask) error {
	data := map[string]any{}
	if adapter, ok := t.profileContext()["type"]; ok {
		data["adapter"] = adapter
	}

	const name = ".pre-commit-config.yaml"
	return t.renderInto(name, name, filepath.Join(t.projectDir(), name), data)
}

func setupDbtDebug(ctx context.Context, t *setupTask) error {
	args, err := t.dbtArgs("debug")
	if err != nil {
		return err
	}

	err = t.console.Spin("Running dbt debug", func() error {
		return t.runner.Run(ctx, executor.Cmd{
			Name:   "dbt",
			Args:   args,
			Stdout: t.console.Writer(),
			Stderr: t.console.Writer(),
		})
	})
	if err != nil {
		return err
	}

	t.console.Row("dbt debug", t.console.Success("OK ✓"))
	return nil
}
