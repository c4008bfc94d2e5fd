package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/project"
	"github.com/stretchr/testify/require"
)

// ProjectFixture is an isolated dbt project on disk plus a fake home
// directory, for exercising commands end to end.
type ProjectFixture struct {
	Dir  string
	Home string
	Env  map[string]string
	t    *testing.T
}

// TestProject creates a temp dbt project named "analytics" with an empty
// models folder. HOME points at a separate temp directory.
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	p := &ProjectFixture{
		Dir:  t.TempDir(),
		Home: t.TempDir(),
		t:    t,
	}
	p.Env = map[string]string{"HOME": p.Home}

	p.WithFile(consts.DbtProjectFileName, "name: analytics\nprofile: analytics\nmodel-paths: [models]\n")
	require.NoError(t, os.MkdirAll(filepath.Join(p.Dir, "models"), consts.ModeDir))

	return p
}

// Initialized runs project initialization so .dbt_coves/config.yml exists.
func (p *ProjectFixture) Initialized() *ProjectFixture {
	p.t.Helper()

	_, err := project.New(p.Dir).Initialize(project.InitOptions{})
	require.NoError(p.t, err, "Failed to initialize test project")
	return p
}

// WithConfig writes .dbt_coves.yml at the project root.
func (p *ProjectFixture) WithConfig(content string) *ProjectFixture {
	p.t.Helper()
	return p.WithFile(consts.ConfigFileName, content)
}

// WithModels adds one SQL model per name under models/.
func (p *ProjectFixture) WithModels(names ...string) *ProjectFixture {
	p.t.Helper()

	for _, name := range names {
		p.WithFile(filepath.Join("models", name+".sql"), "select 1 as id\n")
	}
	return p
}

// WithFile writes content at path relative to the project dir.
func (p *ProjectFixture) WithFile(path, content string) *ProjectFixture {
	p.t.Helper()

	full := filepath.Join(p.Dir, path)
	require.NoError(p.t, os.MkdirAll(filepath.Dir(full), consts.ModeDir))
	require.NoError(p.t, os.WriteFile(full, []byte(content), consts.ModeFile), "Failed to write %s", path)
	return p
}

// Setenv sets a variable in the fixture environment.
func (p *ProjectFixture) Setenv(key, value string) *ProjectFixture {
	p.Env[key] = value
	return p
}

// Lookup reads the fixture environment. It satisfies options.Env.
func (p *ProjectFixture) Lookup(key string) (string, bool) {
	v, ok := p.Env[key]
	return v, ok
}

// Path joins elements onto the project dir.
func (p *ProjectFixture) Path(elem ...string) string {
	return filepath.Join(append([]string{p.Dir}, elem...)...)
}
