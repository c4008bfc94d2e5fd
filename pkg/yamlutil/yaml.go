// Package yamlutil reads and writes the YAML documents dbt-coves touches:
// dbt_project.yml, profiles.yml and generated property files.
package yamlutil

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a document parses to nothing.
var ErrEmpty = errors.New("yaml document is empty")

// Load reads path into a generic mapping. Missing files return an error
// satisfying errors.Is(err, fs.ErrNotExist); empty documents return ErrEmpty.
func Load(path string) (map[string]any, error) {
	var out map[string]any
	if err := LoadInto(path, &out); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return nil, errors.Wrapf(ErrEmpty, "%s", path)
	}

	return out, nil
}

// LoadInto decodes path into out.
func LoadInto(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read file: %s", path)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return errors.Wrapf(ErrEmpty, "%s", path)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to parse yaml: %s", path)
	}

	return nil
}

// Save encodes v with two space indentation and writes it to path, creating
// parent directories as needed.
func Save(path string, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode yaml")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "failed to close yaml encoder")
	}

	if err := os.MkdirAll(filepath.Dir(path), consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}

	if err := os.WriteFile(path, buf.Bytes(), consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to write file: %s", path)
	}

	return nil
}
