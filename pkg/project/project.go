package project

import (
	_ "embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"testing/fstest"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/render"
	"github.com/pkg/errors"
)

//go:embed embed/config.yml
var defaultConfig []byte

type (
	// InitOptions controls project initialization.
	InitOptions struct {
		// SkipTemplates leaves the templates folder empty instead of seeding it
		// with copies of the built in templates
		SkipTemplates bool
	}

	// Project is a dbt project directory managed by dbt-coves.
	Project struct {
		root string
	}
)

// New creates a Project rooted at dir. The directory must exist before
// Initialize is called.
func New(dir string) *Project {
	return &Project{root: dir}
}

// Root returns the project directory.
func (p *Project) Root() string {
	return p.root
}

// ConfigPath returns the location of the dbt-coves config written by
// Initialize.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.root, consts.ConfigDirName, consts.NestedConfigFileName)
}

// TemplatesDir returns the user templates folder.
func (p *Project) TemplatesDir() string {
	return filepath.Join(p.root, filepath.FromSlash(consts.DefaultTemplatesDir))
}

// Initialize writes the dbt-coves layout into the project:
//
//	.dbt_coves/
//	├── config.yml
//	└── templates/
//	    ├── model_props.yml
//	    └── ...
//
// It is idempotent. Existing files and directories are never touched, and the
// returned slice lists only the paths (relative to the root, slash separated)
// that were created by this call.
func (p *Project) Initialize(opts InitOptions) ([]string, error) {
	if err := p.ensureDirectory(); err != nil {
		return nil, err
	}

	img, err := image(opts)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(img))
	for name := range img {
		paths = append(paths, name)
	}
	sort.Strings(paths)

	var created []string
	for _, name := range paths {
		entry := img[name]
		full := filepath.Join(p.root, filepath.FromSlash(name))

		if _, err := os.Stat(full); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return created, errors.Wrapf(err, "failed to stat %s", full)
		}

		if entry.Mode.IsDir() {
			if err := os.MkdirAll(full, entry.Mode.Perm()); err != nil {
				return created, errors.Wrapf(err, "failed to create directory %s", full)
			}
			created = append(created, name)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(full), consts.ModeDir); err != nil {
			return created, errors.Wrapf(err, "failed to create parent directory %s", filepath.Dir(full))
		}

		if err := os.WriteFile(full, entry.Data, consts.ModeFile); err != nil {
			return created, errors.Wrapf(err, "failed to write file %s", full)
		}
		created = append(created, name)
	}

	return created, nil
}

// DefaultConfig returns the config.yml written by Initialize.
func DefaultConfig() []byte {
	return append([]byte(nil), defaultConfig...)
}

func image(opts InitOptions) (fstest.MapFS, error) {
	img := fstest.MapFS{
		consts.ConfigDirName: {Mode: fs.ModeDir | consts.ModeDir},
		path.Join(consts.ConfigDirName, consts.NestedConfigFileName): {Data: defaultConfig},
		consts.DefaultTemplatesDir:                                    {Mode: fs.ModeDir | consts.ModeDir},
	}

	if opts.SkipTemplates {
		return img, nil
	}

	for _, name := range render.Defaults() {
		data, err := render.DefaultTemplate(name)
		if err != nil {
			return nil, err
		}
		img[path.Join(consts.DefaultTemplatesDir, name)] = &fstest.MapFile{Data: data}
	}

	return img, nil
}

func (p *Project) ensureDirectory() error {
	info, err := os.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}
