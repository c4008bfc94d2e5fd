package cmd

import (
	"slices"
	"testing"

	"github.com/datacoves/dbt-coves/pkg/config"
	"github.com/datacoves/dbt-coves/pkg/diag"
	"github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/datacoves/dbt-coves/pkg/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestModule(t *testing.T) {
	var (
		runner   *dispatch.Runner
		reporter *diag.Reporter
	)

	app := fx.New(
		config.Module,
		diag.Module,
		logging.Module,
		dispatch.Module,
		Module,
		fx.Supply(&Version{Version: "1.2.3"}),
		fx.NopLogger,
		fx.Populate(&runner, &reporter),
	)
	require.NoError(t, app.Err())

	require.NotNil(t, reporter)
	require.NotNil(t, runner.Version)

	names := runner.Registry.Root().ChildNames()
	require.True(t, slices.IsSorted(names))
	require.Equal(t, []string{"check", "extract", "fix", "generate", "init", "load", "setup"}, names)
}
