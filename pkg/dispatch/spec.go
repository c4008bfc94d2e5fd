package dispatch

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/config"
	"github.com/datacoves/dbt-coves/pkg/options"
)

type (
	// Task is one executable unit of work bound to a leaf command. The
	// returned code becomes the process exit code; a non-nil error is left
	// to the top-level reporter.
	Task interface {
		Run(ctx context.Context) (int, error)
	}

	// TaskFunc adapts a function to Task.
	TaskFunc func(ctx context.Context) (int, error)

	// Factory validates Params and constructs the Task for a leaf command.
	Factory func(Params) (Task, error)

	// Params is everything a task may depend on for one invocation.
	Params struct {
		Options *options.Resolved

		// Config is nil unless the command declares NeedsConfig
		Config *config.Store

		Env    options.Env
		Stdout io.Writer
		Stderr io.Writer
		Logger *slog.Logger
	}

	// CommandSpec declares a command or command group.
	//
	// A leaf has New set and no Commands; a group has at least one child
	// and no New. Registry.Register enforces this.
	CommandSpec struct {
		Name        string
		Usage       string
		Description string
		Options     []options.Option
		Commands    []*CommandSpec

		// NeedsConfig makes the runner load the project config before
		// constructing the task
		NeedsConfig bool

		New Factory

		parent *CommandSpec
	}
)

// Run implements Task.
func (f TaskFunc) Run(ctx context.Context) (int, error) { return f(ctx) }

// IsLeaf reports whether the spec is bound to a task.
func (s *CommandSpec) IsLeaf() bool {
	return len(s.Commands) == 0
}

// Child returns the direct child named name, or nil.
func (s *CommandSpec) Child(name string) *CommandSpec {
	for _, c := range s.Commands {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// Path returns the names from the root down to s, excluding the root.
func (s *CommandSpec) Path() []string {
	var path []string
	for p := s; p != nil && p.parent != nil; p = p.parent {
		path = append([]string{p.Name}, path...)
	}

	return path
}

// FullName is the space separated command path, e.g. "setup ssh".
func (s *CommandSpec) FullName() string {
	return strings.Join(s.Path(), " ")
}

// ChildNames lists the names of the direct children in declaration order.
func (s *CommandSpec) ChildNames() []string {
	names := make([]string, len(s.Commands))
	for i, c := range s.Commands {
		names[i] = c.Name
	}

	return names
}
