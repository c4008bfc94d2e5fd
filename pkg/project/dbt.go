package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/yamlutil"
	"github.com/pkg/errors"
)

var defaultModelPaths = []string{"models"}

type (
	// DbtProject is the subset of dbt_project.yml that dbt-coves reads.
	DbtProject struct {
		Name       string   `yaml:"name"`
		Profile    string   `yaml:"profile"`
		ModelPaths []string `yaml:"model-paths"`

		// SourcePaths is the pre 1.0 name for ModelPaths
		SourcePaths []string `yaml:"source-paths"`

		dir string
	}

	// Model is a SQL model file found under the model paths.
	Model struct {
		Name string

		// Path is the .sql file
		Path string

		// PropertiesPath is the sibling .yml file, which may not exist
		PropertiesPath string
	}
)

// LoadDbtProject reads dbt_project.yml from dir.
func LoadDbtProject(dir string) (*DbtProject, error) {
	p := &DbtProject{dir: dir}
	if err := yamlutil.LoadInto(filepath.Join(dir, consts.DbtProjectFileName), p); err != nil {
		return nil, errors.Wrapf(err, "failed to load dbt project in %s", dir)
	}

	if p.Name == "" {
		return nil, errors.Errorf("%s in %s does not declare a name", consts.DbtProjectFileName, dir)
	}

	return p, nil
}

// Dir returns the directory containing dbt_project.yml.
func (p *DbtProject) Dir() string {
	return p.dir
}

// Paths returns the configured model paths, falling back to source-paths and
// then to dbt's default of "models".
func (p *DbtProject) Paths() []string {
	switch {
	case len(p.ModelPaths) > 0:
		return p.ModelPaths
	case len(p.SourcePaths) > 0:
		return p.SourcePaths
	}

	return defaultModelPaths
}

// Models walks the model paths and returns every .sql model in lexical
// order. Missing model paths are skipped.
func (p *DbtProject) Models() ([]Model, error) {
	var models []Model
	for _, rel := range p.Paths() {
		root := filepath.Join(p.dir, rel)
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".sql" {
				return nil
			}

			name := strings.TrimSuffix(d.Name(), ".sql")
			models = append(models, Model{
				Name:           name,
				Path:           path,
				PropertiesPath: filepath.Join(filepath.Dir(path), name+".yml"),
			})
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to walk model path %s", root)
		}
	}

	return models, nil
}

// HasProperties reports whether the model already has a properties file.
func (m Model) HasProperties() bool {
	_, err := os.Stat(m.PropertiesPath)
	return err == nil
}
