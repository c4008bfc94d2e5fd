package cmd

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/config"
	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/datacoves/dbt-coves/pkg/project"
	"github.com/datacoves/dbt-coves/pkg/render"
	"github.com/pkg/errors"
)

const propertiesTemplate = "model_props.yml"

const (
	strategySkip      = "skip"
	strategyOverwrite = "overwrite"
)

// propertiesSettings is the generate.properties config section.
type propertiesSettings struct {
	TemplatesFolder string `yaml:"templates_folder"`
	UpdateStrategy  string `yaml:"update_strategy"`
}

// generate writes a properties file next to every model that lacks one.
//
// Settings come from the generate.properties section of the config:
//
//	generate:
//	  properties:
//	    templates_folder: .dbt_coves/templates
//	    update_strategy: skip   # or overwrite
//
// The properties file is rendered from model_props.yml, looked up in the
// templates folder first and the built in defaults second.
func generate() *dispatch.CommandSpec {
	return &dispatch.CommandSpec{
		Name:        "generate",
		Usage:       "Generates properties files for dbt models",
		Options:     sharedOptions(),
		NeedsConfig: true,
		New: func(p dispatch.Params) (dispatch.Task, error) {
			settings := propertiesSettings{
				TemplatesFolder: consts.DefaultTemplatesDir,
				UpdateStrategy:  strategySkip,
			}
			if err := p.Config.Decode("generate", "properties", &settings); err != nil {
				return nil, err
			}

			if !slices.Contains([]string{strategySkip, strategyOverwrite}, settings.UpdateStrategy) {
				return nil, &config.InvalidError{
					Path: p.Config.Path(),
					Err: errors.Errorf(
						"generate.properties.update_strategy must be one of %s, got %q",
						strings.Join([]string{strategySkip, strategyOverwrite}, ", "),
						settings.UpdateStrategy,
					),
				}
			}

			return &generateTask{taskContext: newTaskContext(p, nil), settings: settings}, nil
		},
	}
}

type generateTask struct {
	*taskContext
	settings propertiesSettings
}

func (t *generateTask) Run(context.Context) (int, error) {
	dbt, err := project.LoadDbtProject(t.projectDir())
	if err != nil {
		return 1, &dispatch.TaskExecutionError{Task: "generate", Err: err}
	}

	models, err := dbt.Models()
	if err != nil {
		return 1, &dispatch.TaskExecutionError{Task: "generate", Err: err}
	}

	if len(models) == 0 {
		t.console.Println(t.console.Warn("No models found in " + strings.Join(dbt.Paths(), ", ")))
		return 0, nil
	}

	folder := t.settings.TemplatesFolder
	if !filepath.IsAbs(folder) {
		folder = filepath.Join(t.projectDir(), folder)
	}

	r := render.New(folder)
	r.Overwrite = t.settings.UpdateStrategy == strategyOverwrite

	var rows [][]string
	for _, m := range models {
		existed := m.HasProperties()
		written, err := r.RenderFile(propertiesTemplate, map[string]any{
			"model":   m.Name,
			"project": dbt.Name,
		}, m.PropertiesPath)
		if err != nil {
			return 1, &dispatch.TaskExecutionError{Task: "generate", Err: err}
		}

		action := "skipped"
		switch {
		case written && existed:
			action = "overwritten"
		case written:
			action = "generated"
		}

		rel, _ := filepath.Rel(dbt.Dir(), m.PropertiesPath)
		rows = append(rows, []string{m.Name, rel, action})
		t.logger.Debug("properties file", "model", m.Name, "action", action)
	}

	t.console.Table([]string{"model", "properties", "action"}, rows)
	return 0, nil
}
