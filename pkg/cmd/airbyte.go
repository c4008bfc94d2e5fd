package cmd

import (
	"context"
	"fmt"

	"github.com/datacoves/dbt-coves/pkg/airbyte"
	"github.com/datacoves/dbt-coves/pkg/config"
	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/datacoves/dbt-coves/pkg/options"
)

const (
	optHost = "host"
	optPort = "port"
	optPath = "path"
)

type (
	// airbyteSettings is the <command>.airbyte config section.
	airbyteSettings struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
		Path string `yaml:"path"`
	}

	airbyteTask struct {
		*taskContext
		settings airbyteSettings
		sync     func(ctx context.Context, c *airbyte.Client, dir string) ([]airbyte.Result, error)
		verb     string
	}
)

func airbyteOptions() []options.Option {
	return withOptions(
		options.Option{Name: optHost, Usage: "Airbyte's API hostname", EnvVar: consts.EnvAirbyteHost},
		options.Option{Name: optPort, Usage: "Airbyte's API port", EnvVar: consts.EnvAirbytePort, Default: "8000"},
		options.Option{Name: optPath, Usage: "Where the connection, source and destination files live"},
	)
}

// extract dumps the connections, sources and destinations of an Airbyte
// workspace to JSON files:
//
//	<path>/connections/<name>.json
//	<path>/sources/<name>.json
//	<path>/destinations/<name>.json
//
// host, port and path come from flags, then from the extract.airbyte config
// section, then from the defaults.
func extract() *dispatch.CommandSpec {
	return &dispatch.CommandSpec{
		Name:        "extract",
		Usage:       "Extracts Airbyte connections, sources and destinations to files",
		Options:     airbyteOptions(),
		NeedsConfig: true,
		New: func(p dispatch.Params) (dispatch.Task, error) {
			return newAirbyteTask(p, "extract", airbyte.Export)
		},
	}
}

// load is the reverse of extract: it creates or updates sources and
// destinations, then connections, from the files under path. Settings come
// from the load.airbyte config section.
func load() *dispatch.CommandSpec {
	return &dispatch.CommandSpec{
		Name:        "load",
		Usage:       "Loads Airbyte connections, sources and destinations from files",
		Options:     airbyteOptions(),
		NeedsConfig: true,
		New: func(p dispatch.Params) (dispatch.Task, error) {
			return newAirbyteTask(p, "load", airbyte.Import)
		},
	}
}

func newAirbyteTask(
	p dispatch.Params,
	verb string,
	sync func(context.Context, *airbyte.Client, string) ([]airbyte.Result, error),
) (dispatch.Task, error) {
	var cfg airbyteSettings
	if err := p.Config.Decode(verb, "airbyte", &cfg); err != nil {
		return nil, err
	}

	settings := airbyteSettings{
		Host: pick(p.Options.Get(optHost), cfg.Host),
		Port: pick(p.Options.Get(optPort), cfg.Port),
		Path: pick(p.Options.Get(optPath), cfg.Path),
	}

	required := []struct{ key, value string }{
		{optHost, settings.Host},
		{optPath, settings.Path},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &config.KeyMissingError{Path: p.Config.Path(), Keys: []string{verb, "airbyte", r.key}}
		}
	}

	return &airbyteTask{
		taskContext: newTaskContext(p, nil),
		settings:    settings,
		sync:        sync,
		verb:        verb,
	}, nil
}

// pick applies flag > config > default: explicit flags and environment
// values win, then the config value, then the option's static default.
func pick(v options.Value, configured string) string {
	switch {
	case v.Source() == options.FromFlag || v.Source() == options.FromEnv:
		return v.String()
	case configured != "":
		return configured
	}

	return v.String()
}

func (t *airbyteTask) Run(ctx context.Context) (int, error) {
	client := airbyte.New(t.settings.Host, t.settings.Port)
	t.logger.Debug("airbyte", "api", client.BaseURL(), "path", t.settings.Path)

	var results []airbyte.Result
	err := t.console.Spin(fmt.Sprintf("Talking to Airbyte at %s", client.BaseURL()), func() error {
		var err error
		results, err = t.sync(ctx, client, t.settings.Path)
		return err
	})
	t.summarize(results)
	if err != nil {
		return 1, err
	}

	t.console.Println(t.console.Success(fmt.Sprintf("%s finished: %d entities", t.verb, len(results))))
	return 0, nil
}

func (t *airbyteTask) summarize(results []airbyte.Result) {
	if len(results) == 0 {
		return
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{string(r.Resource), r.Name, r.Action, r.Path})
	}
	t.console.Table([]string{"resource", "name", "action", "file"}, rows)
}
