package options

import (
	"fmt"

	"github.com/datacoves/dbt-coves/pkg/consts"
)

type (
	// UnknownOptionError is returned for flags that are not declared by the
	// selected command and for stray positional tokens.
	UnknownOptionError struct {
		Token string
	}

	// InvalidOptionError is returned when a value fails its type or
	// existence constraint.
	InvalidOptionError struct {
		Option   string
		Value    string
		Expected string
		Reason   string
		Source   Source
		EnvVar   string
	}
)

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("no such option: %s", e.Token)
}

// ExitCode implements cli.ExitCoder.
func (e *UnknownOptionError) ExitCode() int { return consts.ExitUsage }

func (e *InvalidOptionError) Error() string {
	msg := fmt.Sprintf("invalid value for %s: %q is not %s", flagToken(e.Option), e.Value, e.Expected)
	if e.Reason != "" {
		msg = fmt.Sprintf("invalid value for %s: %s", flagToken(e.Option), e.Reason)
	}
	if e.Source == FromEnv && e.EnvVar != "" {
		msg += fmt.Sprintf(" (read from $%s)", e.EnvVar)
	}
	return msg
}

// ExitCode implements cli.ExitCoder.
func (e *InvalidOptionError) ExitCode() int { return consts.ExitUsage }
