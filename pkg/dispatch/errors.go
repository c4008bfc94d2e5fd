package dispatch

import (
	"fmt"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/consts"
)

type (
	// ConfigurationError reports an invalid command tree. It is a programming
	// error surfaced at startup.
	ConfigurationError struct {
		Command string
		Reason  string
	}

	// UnknownCommandError is returned by Resolve for a token that matches no
	// child of the current command group.
	UnknownCommandError struct {
		Token   string
		Parent  string
		Choices []string
	}

	// MissingCommandError is returned when a command group is invoked with
	// options but without one of its subcommands.
	MissingCommandError struct {
		Command string
		Choices []string
	}

	// TaskExecutionError is raised by a task's own logic for failures it
	// cannot recover from.
	TaskExecutionError struct {
		Task string
		Err  error
	}
)

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid command %q: %s", e.Command, e.Reason)
}
func (e *ConfigurationError) ExitCode() int { return consts.ExitFailure }

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("no such command: %s (choose from %s)", e.Token, strings.Join(e.Choices, ", "))
}
func (e *UnknownCommandError) ExitCode() int { return consts.ExitUsage }

func (e *MissingCommandError) Error() string {
	return fmt.Sprintf("missing command: %s expects one of %s", e.Command, strings.Join(e.Choices, ", "))
}
func (e *MissingCommandError) ExitCode() int { return consts.ExitUsage }

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Task, e.Err)
}
func (e *TaskExecutionError) ExitCode() int { return consts.ExitFailure }
func (e *TaskExecutionError) Unwrap() error { return e.Err }
