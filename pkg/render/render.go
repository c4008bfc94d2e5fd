// Package render produces files from named templates.
//
// Templates are looked up first in a user templates folder (by default
// .dbt_coves/templates inside the dbt project) and then in the defaults
// embedded in the binary, so a project can override any single template.
// Templates use text/template syntax with the sprig function library.
package render

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/pkg/errors"
)

//go:embed all:defaults
var embedded embed.FS

// ErrTemplateNotFound is wrapped when neither the templates folder nor the
// embedded defaults provide a template.
var ErrTemplateNotFound = errors.New("template not found")

// Renderer renders named templates.
type Renderer struct {
	// Dir is the user templates folder. It may be empty or not exist.
	Dir string

	// Overwrite allows RenderFile to replace existing files
	Overwrite bool

	defaults fs.FS
}

// New returns a Renderer preferring templates in dir.
func New(dir string) *Renderer {
	sub, _ := fs.Sub(embedded, "defaults")
	return &Renderer{Dir: dir, defaults: sub}
}

// Defaults lists the names of the embedded templates.
func Defaults() []string {
	entries, _ := fs.ReadDir(embedded, "defaults")

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// DefaultTemplate returns the embedded content of name.
func DefaultTemplate(name string) ([]byte, error) {
	data, err := fs.ReadFile(embedded, "defaults/"+name)
	if err != nil {
		return nil, errors.Wrapf(ErrTemplateNotFound, "%s", name)
	}
	return data, nil
}

// Render executes the template called name with data.
func (r *Renderer) Render(name string, data any) (string, error) {
	src, err := r.lookup(name)
	if err != nil {
		return "", err
	}

	return execute(name, src, data)
}

// RenderFile renders name into output. An existing output is left untouched
// unless Overwrite is set; the returned bool reports whether the file was
// written.
func (r *Renderer) RenderFile(name string, data any, output string) (bool, error) {
	if !r.Overwrite {
		if _, err := os.Stat(output); err == nil {
			return false, nil
		}
	}

	content, err := r.Render(name, data)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(output), consts.ModeDir); err != nil {
		return false, errors.Wrapf(err, "failed to create directory for %s", output)
	}

	if err := os.WriteFile(output, []byte(content), consts.ModeFile); err != nil {
		return false, errors.Wrapf(err, "failed to write file: %s", output)
	}

	return true, nil
}

func (r *Renderer) lookup(name string) (string, error) {
	if r.Dir != "" {
		data, err := os.ReadFile(filepath.Join(r.Dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrapf(err, "failed to read template %s", name)
		}
	}

	data, err := fs.ReadFile(r.defaults, name)
	if err != nil {
		return "", errors.Wrapf(ErrTemplateNotFound, "%s", name)
	}

	return string(data), nil
}

func execute(name, src string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(src)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse template %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "failed to render template %s", name)
	}

	return buf.String(), nil
}
