package dispatch

import (
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/config"
	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/diag"
	"github.com/datacoves/dbt-coves/pkg/options"
	"go.uber.org/fx"
)

type (
	registryParams struct {
		fx.In

		Commands []*CommandSpec `group:"commands"`
	}

	runnerParams struct {
		fx.In

		Registry *Registry
		Open     config.Opener
		Reporter *diag.Reporter
		Logger   *slog.Logger
		Version  VersionFunc
	}
)

var Module = fx.Module("dispatch", fx.Provide(
	newRegistry,
	newRunner,
))

// newRegistry registers the command group in name order so help output is
// stable regardless of provide order.
func newRegistry(p registryParams) (*Registry, error) {
	specs := slices.Clone(p.Commands)
	slices.SortFunc(specs, func(a, b *CommandSpec) int { return strings.Compare(a.Name, b.Name) })

	reg := NewRegistry(consts.AppName, consts.AppUsage)
	for _, spec := range specs {
		if err := reg.Register(nil, spec); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func newRunner(p runnerParams) *Runner {
	return &Runner{
		Registry: p.Registry,
		Open:     p.Open,
		Reporter: p.Reporter,
		Logger:   p.Logger,
		Version:  p.Version,
		Env:      options.OSEnv,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}
