package options_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/datacoves/dbt-coves/pkg/options"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) options.Env {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func decls(t *testing.T) ([]options.Option, string) {
	t.Helper()

	dir := t.TempDir()
	return []options.Option{
		{Name: "target", Aliases: []string{"t"}, Kind: options.String},
		{Name: "verbose", Aliases: []string{"v"}, Kind: options.Bool},
		{Name: "log-level", EnvVar: "LOGGING_LEVEL", Kind: options.String},
		{Name: "project-dir", EnvVar: "DBT_PROJECT_DIR", Kind: options.Path, Constraint: options.MustBeDir, Default: dir},
		{Name: "vars", Kind: options.YAML},
		{Name: "format", Kind: options.Enum, Choices: []string{"json", "yaml"}, Default: "yaml"},
	}, dir
}

func TestParse_Precedence(t *testing.T) {
	opts, defaultDir := decls(t)
	flagDir := t.TempDir()
	envDir := t.TempDir()

	t.Run("flag beats env", func(t *testing.T) {
		res, err := options.Parse(opts, []string{"--project-dir", flagDir}, envOf(map[string]string{"DBT_PROJECT_DIR": envDir}))
		require.NoError(t, err)
		require.Equal(t, flagDir, res.Path("project-dir"))
		require.Equal(t, options.FromFlag, res.Get("project-dir").Source())
	})

	t.Run("env beats default", func(t *testing.T) {
		res, err := options.Parse(opts, nil, envOf(map[string]string{"DBT_PROJECT_DIR": envDir}))
		require.NoError(t, err)
		require.Equal(t, envDir, res.Path("project-dir"))
		require.Equal(t, options.FromEnv, res.Get("project-dir").Source())
	})

	t.Run("default when nothing else", func(t *testing.T) {
		res, err := options.Parse(opts, nil, envOf(nil))
		require.NoError(t, err)
		require.Equal(t, defaultDir, res.Path("project-dir"))
		require.Equal(t, options.FromDefault, res.Get("project-dir").Source())
	})

	t.Run("absent marker without flag, env or default", func(t *testing.T) {
		res, err := options.Parse(opts, nil, envOf(nil))
		require.NoError(t, err)
		require.False(t, res.Has("target"))
		require.False(t, res.Has("log-level"))
		require.Equal(t, options.Absent, res.Get("target").Source())
		require.Empty(t, res.String("target"))
	})

	t.Run("empty env value counts as unset", func(t *testing.T) {
		res, err := options.Parse(opts, nil, envOf(map[string]string{"LOGGING_LEVEL": ""}))
		require.NoError(t, err)
		require.False(t, res.Has("log-level"))
	})

	t.Run("env only binding", func(t *testing.T) {
		res, err := options.Parse(opts, nil, envOf(map[string]string{"LOGGING_LEVEL": "debug"}))
		require.NoError(t, err)
		require.Equal(t, "debug", res.String("log-level"))
		require.Equal(t, options.FromEnv, res.Get("log-level").Source())
	})
}

func TestParse_Bool(t *testing.T) {
	opts, _ := decls(t)

	res, err := options.Parse(opts, nil, envOf(nil))
	require.NoError(t, err)
	require.False(t, res.Bool("verbose"))
	require.True(t, res.Has("verbose"))
	require.Equal(t, options.FromDefault, res.Get("verbose").Source())
	require.Equal(t, "false", res.String("verbose"))

	res, err = options.Parse(opts, []string{"-v"}, envOf(nil))
	require.NoError(t, err)
	require.True(t, res.Bool("verbose"))
	require.Equal(t, options.FromFlag, res.Get("verbose").Source())

	res, err = options.Parse(opts, []string{"--verbose=false"}, envOf(nil))
	require.NoError(t, err)
	require.False(t, res.Bool("verbose"))

	_, err = options.Parse(opts, []string{"--verbose=maybe"}, envOf(nil))
	var invalid *options.InvalidOptionError
	require.True(t, errors.As(err, &invalid))

	declared := []options.Option{{Name: "force", Kind: options.Bool, BoolDefault: true}}
	res, err = options.Parse(declared, nil, envOf(nil))
	require.NoError(t, err)
	require.True(t, res.Bool("force"))
}

func TestParse_AliasesAndEquals(t *testing.T) {
	opts, _ := decls(t)

	res, err := options.Parse(opts, []string{"-t", "prod", "--format=json"}, envOf(nil))
	require.NoError(t, err)
	require.Equal(t, "prod", res.String("target"))
	require.Equal(t, "json", res.String("format"))
	require.Equal(t, []string{"target", "verbose", "log-level", "project-dir", "vars", "format"}, res.Names())
}

func TestParse_PathConstraints(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "profiles.yml")
	require.NoError(t, os.WriteFile(file, []byte("x: 1\n"), 0o644))

	tests := []struct {
		name       string
		constraint options.Constraint
		value      string
		wantErr    bool
	}{
		{"dir ok", options.MustBeDir, dir, false},
		{"dir given file", options.MustBeDir, file, true},
		{"dir missing", options.MustBeDir, filepath.Join(dir, "missing"), true},
		{"file ok", options.MustBeFile, file, false},
		{"file given dir", options.MustBeFile, dir, true},
		{"exists ok", options.MustExist, dir, false},
		{"exists missing", options.MustExist, "/missing/dir", true},
		{"unconstrained missing", options.None, "/missing/dir", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []options.Option{{Name: "path", Kind: options.Path, Constraint: tt.constraint}}
			res, err := options.Parse(opts, []string{"--path", tt.value}, envOf(nil))
			if !tt.wantErr {
				require.NoError(t, err)
				require.Equal(t, tt.value, res.Path("path"))
				return
			}

			var invalid *options.InvalidOptionError
			require.True(t, errors.As(err, &invalid))
			require.Equal(t, "path", invalid.Option)
			require.Equal(t, tt.constraint.String(), invalid.Expected)
			require.Contains(t, err.Error(), "--path")
		})
	}
}

func TestParse_EnvPathViolationNamesVariable(t *testing.T) {
	opts := []options.Option{{
		Name:       "config-path",
		EnvVar:     "DBT_COVES_CONFIG",
		Kind:       options.Path,
		Constraint: options.MustBeDir,
		Default:    ".",
	}}

	_, err := options.Parse(opts, nil, envOf(map[string]string{"DBT_COVES_CONFIG": "/missing/dir"}))
	var invalid *options.InvalidOptionError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, options.FromEnv, invalid.Source)
	require.Equal(t, `invalid value for --config-path: "/missing/dir" is not an existing directory (read from $DBT_COVES_CONFIG)`, err.Error())
}

func TestParse_UnknownTokens(t *testing.T) {
	opts, _ := decls(t)

	tests := map[string][]string{
		"undeclared flag":      {"--nope"},
		"undeclared short":     {"-x"},
		"positional":           {"extra"},
		"positional after flg": {"-t", "prod", "extra"},
		"after terminator":     {"--", "extra"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := options.Parse(opts, args, envOf(nil))
			var unknown *options.UnknownOptionError
			require.True(t, errors.As(err, &unknown), "got %v", err)
			require.Equal(t, args[len(args)-1], unknown.Token)
		})
	}
}

func TestParse_MissingValue(t *testing.T) {
	opts, _ := decls(t)

	_, err := options.Parse(opts, []string{"--target"}, envOf(nil))
	var invalid *options.InvalidOptionError
	require.True(t, errors.As(err, &invalid))
	require.Contains(t, err.Error(), "flag needs an argument")
}

func TestParse_EnumAndCheck(t *testing.T) {
	opts, _ := decls(t)

	_, err := options.Parse(opts, []string{"--format", "xml"}, envOf(nil))
	var invalid *options.InvalidOptionError
	require.True(t, errors.As(err, &invalid))
	require.Contains(t, err.Error(), "one of json, yaml")

	checked := []options.Option{{
		Name: "level",
		Check: func(s string) error {
			if s != "debug" {
				return errors.New("unknown level")
			}
			return nil
		},
	}}

	_, err = options.Parse(checked, []string{"--level", "loud"}, envOf(nil))
	require.EqualError(t, err, "invalid value for --level: unknown level")
}

func TestParse_Vars(t *testing.T) {
	opts, _ := decls(t)

	res, err := options.Parse(opts, []string{"--vars", "{my_variable: my_value, nested: {a: [1, 2]}}"}, envOf(nil))
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"my_variable": "my_value",
		"nested":      map[string]any{"a": []any{1, 2}},
	}, res.Vars("vars"))

	_, err = options.Parse(opts, []string{"--vars", "just a string"}, envOf(nil))
	var invalid *options.InvalidOptionError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, "a YAML mapping", invalid.Expected)
}

func TestValidate(t *testing.T) {
	require.NoError(t, options.Validate([]options.Option{{Name: "a"}, {Name: "b", Aliases: []string{"B"}}}))
	require.Error(t, options.Validate([]options.Option{{Name: ""}}))
	require.Error(t, options.Validate([]options.Option{{Name: "a"}, {Name: "b", Aliases: []string{"a"}}}))
	require.Error(t, options.Validate([]options.Option{{Name: "e", Kind: options.Enum}}))
	require.Error(t, options.Validate([]options.Option{{Name: "b", Kind: options.Bool, Default: "true"}}))
}

func TestNewResolved(t *testing.T) {
	res := options.NewResolved(map[string]string{"target": "dev", "verbose": "true"})
	require.Equal(t, "dev", res.String("target"))
	require.True(t, res.Bool("verbose"))
	require.False(t, res.Has("missing"))

	var nilRes *options.Resolved
	require.False(t, nilRes.Has("anything"))
}
