package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/datacoves/dbt-coves/pkg/cmd/testutil"
	"github.com/datacoves/dbt-coves/pkg/config"
	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/stretchr/testify/require"
)

// harness runs commands the way main does, against a fixture project and a
// fake command runner.
type harness struct {
	project *testutil.ProjectFixture
	runner  *testutil.FakeRunner
	version Version
	stdout  bytes.Buffer
	stderr  bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	return &harness{
		project: testutil.TestProject(t),
		runner:  testutil.NewFakeRunner(),
		version: Version{Version: "1.2.3", Commit: "abc1234", Timestamp: "2024-05-01"},
	}
}

func (h *harness) registry(t *testing.T) *dispatch.Registry {
	t.Helper()

	reg := dispatch.NewRegistry(consts.AppName, consts.AppUsage)
	specs := []*dispatch.CommandSpec{
		initCmd(),
		generate(),
		fix(h.runner),
		check(h.runner),
		setup(h.runner),
		extract(),
		load(),
	}
	for _, spec := range specs {
		require.NoError(t, reg.Register(nil, spec))
	}

	return reg
}

// run dispatches args with --project-dir and --config-path pointing at the
// fixture. runRaw passes args through untouched.
func (h *harness) run(t *testing.T, args ...string) (int, error) {
	t.Helper()

	return h.runRaw(t, append(args, "--project-dir", h.project.Dir, "--config-path", h.project.Dir)...)
}

func (h *harness) runRaw(t *testing.T, args ...string) (int, error) {
	t.Helper()

	r := &dispatch.Runner{
		Registry:         h.registry(t),
		Open:             config.Open,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		Version:          versionBanner(&h.version, h.runner),
		Env:              h.project.Lookup,
		Stdout:           &h.stdout,
		Stderr:           &h.stderr,
		ConfigureLogging: func(slog.Level) bool { return true },
	}

	return r.Run(context.Background(), args)
}
