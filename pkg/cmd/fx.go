package cmd

import (
	"log/slog"

	"github.com/datacoves/dbt-coves/pkg/executor"
	"go.uber.org/fx"
)

var Module = fx.Module("cli",
	fx.Provide(
		newCommandRunner,
		versionBanner,
		fx.Annotate(initCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(generate, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(fix, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(check, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(setup, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(extract, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(load, fx.ResultTags(`group:"commands"`)),
	),
)

func newCommandRunner(logger *slog.Logger) commandRunner {
	return executor.New(executor.Config{Logger: logger})
}
