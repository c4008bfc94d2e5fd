package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/datacoves/dbt-coves/pkg/cmd"
	"github.com/datacoves/dbt-coves/pkg/config"
	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/diag"
	"github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/datacoves/dbt-coves/pkg/logging"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	var (
		runner   *dispatch.Runner
		reporter *diag.Reporter
	)

	app := fx.New(
		config.Module,
		diag.Module,
		logging.Module,
		dispatch.Module,
		cmd.Module,
		fx.Supply(&cmd.Version{Version: version, Commit: commit, Timestamp: date}),
		fx.NopLogger,
		fx.Populate(&runner, &reporter),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", consts.AppName, err)
		os.Exit(consts.ExitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := reporter.Guard(func() (int, error) {
		return runner.Run(ctx, os.Args[1:])
	})
	stop()

	os.Exit(code)
}
