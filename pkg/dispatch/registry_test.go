package dispatch_test

import (
	"context"
	"testing"

	. "github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/datacoves/dbt-coves/pkg/options"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func noopFactory(Params) (Task, error) {
	return TaskFunc(func(context.Context) (int, error) { return 0, nil }), nil
}

func leaf(name string) *CommandSpec {
	return &CommandSpec{Name: name, New: noopFactory}
}

func TestRegistry_Register(t *testing.T) {
	t.Run("tree", func(t *testing.T) {
		reg := NewRegistry("dbt-coves", "")
		require.NoError(t, reg.Register(nil, leaf("generate")))
		require.NoError(t, reg.Register(nil, &CommandSpec{
			Name:     "setup",
			Commands: []*CommandSpec{leaf("ssh"), leaf("git")},
		}))

		setup := reg.Root().Child("setup")
		require.NotNil(t, setup)
		require.Equal(t, []string{"ssh", "git"}, setup.ChildNames())
		require.Equal(t, "setup ssh", setup.Child("ssh").FullName())
		require.Equal(t, []string{"setup", "ssh"}, setup.Child("ssh").Path())
	})

	t.Run("register under group", func(t *testing.T) {
		reg := NewRegistry("dbt-coves", "")
		setup := &CommandSpec{Name: "setup", Commands: []*CommandSpec{leaf("ssh")}}
		require.NoError(t, reg.Register(nil, setup))
		require.NoError(t, reg.Register(setup, leaf("vs-code")))

		spec, _, err := reg.Resolve([]string{"setup", "vs-code"})
		require.NoError(t, err)
		require.Equal(t, "setup vs-code", spec.FullName())
	})

	t.Run("child under a task", func(t *testing.T) {
		reg := NewRegistry("dbt-coves", "")
		generate := leaf("generate")
		require.NoError(t, reg.Register(nil, generate))

		err := reg.Register(generate, leaf("child"))
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "got %v", err)
		require.Equal(t, "generate", cfgErr.Command)
		require.True(t, generate.IsLeaf())

		spec, rest, err := reg.Resolve([]string{"generate", "--verbose"})
		require.NoError(t, err)
		require.Same(t, generate, spec)
		require.Equal(t, []string{"--verbose"}, rest)
	})

	tests := []struct {
		name   string
		before []*CommandSpec
		spec   *CommandSpec
	}{
		{"duplicate sibling", []*CommandSpec{leaf("fix")}, leaf("fix")},
		{"leaf without task", nil, &CommandSpec{Name: "check"}},
		{"group with task", nil, &CommandSpec{Name: "setup", New: noopFactory, Commands: []*CommandSpec{leaf("ssh")}}},
		{"duplicate child", nil, &CommandSpec{Name: "setup", Commands: []*CommandSpec{leaf("ssh"), leaf("ssh")}}},
		{"nested leaf without task", nil, &CommandSpec{Name: "setup", Commands: []*CommandSpec{{Name: "ssh"}}}},
		{"bad options", nil, &CommandSpec{Name: "load", New: noopFactory, Options: []options.Option{{Name: "a"}, {Name: "a"}}}},
		{"dashed name", nil, leaf("--load")},
		{"empty name", nil, leaf("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry("dbt-coves", "")
			for _, s := range tt.before {
				require.NoError(t, reg.Register(nil, s))
			}

			err := reg.Register(nil, tt.spec)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			require.Equal(t, 1, cfgErr.ExitCode())
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry("dbt-coves", "")
	require.NoError(t, reg.Register(nil, leaf("generate")))
	require.NoError(t, reg.Register(nil, &CommandSpec{
		Name:     "setup",
		Commands: []*CommandSpec{leaf("ssh"), leaf("all")},
	}))

	t.Run("leaf with leftover tokens", func(t *testing.T) {
		spec, rest, err := reg.Resolve([]string{"setup", "all", "--templates", "./tmpl", "-v"})
		require.NoError(t, err)
		require.Equal(t, "setup all", spec.FullName())
		require.Equal(t, []string{"--templates", "./tmpl", "-v"}, rest)
	})

	t.Run("leaf keeps positional leftovers for the option parser", func(t *testing.T) {
		spec, rest, err := reg.Resolve([]string{"generate", "extra"})
		require.NoError(t, err)
		require.Equal(t, "generate", spec.Name)
		require.Equal(t, []string{"extra"}, rest)
	})

	t.Run("group stops at flag", func(t *testing.T) {
		spec, rest, err := reg.Resolve([]string{"setup", "--help"})
		require.NoError(t, err)
		require.Equal(t, "setup", spec.Name)
		require.Equal(t, []string{"--help"}, rest)
	})

	t.Run("empty path is the root", func(t *testing.T) {
		spec, rest, err := reg.Resolve(nil)
		require.NoError(t, err)
		require.Same(t, reg.Root(), spec)
		require.Empty(t, rest)
	})

	t.Run("unknown top level", func(t *testing.T) {
		_, _, err := reg.Resolve([]string{"deploy"})
		var unknown *UnknownCommandError
		require.True(t, errors.As(err, &unknown))
		require.Equal(t, "deploy", unknown.Token)
		require.Equal(t, []string{"generate", "setup"}, unknown.Choices)
		require.Equal(t, 2, unknown.ExitCode())
	})

	t.Run("unknown subcommand", func(t *testing.T) {
		_, _, err := reg.Resolve([]string{"setup", "emacs"})
		var unknown *UnknownCommandError
		require.True(t, errors.As(err, &unknown))
		require.Equal(t, "dbt-coves setup", unknown.Parent)
		require.EqualError(t, err, "no such command: emacs (choose from ssh, all)")
	})
}
