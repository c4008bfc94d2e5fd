package config

import (
	"fmt"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/consts"
)

type (
	// MissingError is returned when no config file exists at any of the
	// conventional locations.
	MissingError struct {
		Path string
	}

	// EmptyError is returned when the config file parses to an empty mapping.
	EmptyError struct {
		Path string
	}

	// KeyMissingError is returned by Get when any level of the requested key
	// path is absent. Keys always holds the full requested path.
	KeyMissingError struct {
		Path string
		Keys []string
	}

	// InvalidError is returned when the config file is not a valid
	// group/task/setting document, or a section fails to decode.
	InvalidError struct {
		Path string
		Err  error
	}
)

func (e *MissingError) Error() string { return "config file not found: " + e.Path }
func (e *MissingError) ExitCode() int { return consts.ExitConfig }

func (e *EmptyError) Error() string { return "config file is empty: " + e.Path }
func (e *EmptyError) ExitCode() int { return consts.ExitConfig }

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("config key %q not found in %s", strings.Join(e.Keys, "."), e.Path)
}
func (e *KeyMissingError) ExitCode() int { return consts.ExitConfig }

func (e *InvalidError) Error() string { return fmt.Sprintf("invalid config file %s: %v", e.Path, e.Err) }
func (e *InvalidError) ExitCode() int { return consts.ExitConfig }
func (e *InvalidError) Unwrap() error { return e.Err }
