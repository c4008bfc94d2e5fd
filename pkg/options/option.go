package options

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

type (
	// Kind is the semantic type of an option value.
	Kind int

	// Constraint restricts a Path option to an existing filesystem entry.
	Constraint int

	// Option declares a single command line option.
	//
	// Values resolve with the precedence: explicit flag, then the bound
	// environment variable (EnvVar), then the static default. An option with
	// none of these resolves to the absent marker.
	Option struct {
		// Name is the long flag name without dashes, e.g. "config-path"
		Name string

		// Aliases are alternative names, e.g. "v" for "-v"
		Aliases []string

		// Usage is the help text
		Usage string

		// EnvVar is the environment variable consulted when the flag is not given
		EnvVar string

		// Kind controls parsing and validation of the value
		Kind Kind

		// Default is the static default for non-boolean options. Empty means none.
		Default string

		// DefaultText replaces the default in help output
		DefaultText string

		// BoolDefault is the static default for Bool options
		BoolDefault bool

		// Constraint is enforced for Path options
		Constraint Constraint

		// Choices lists the allowed values for Enum options
		Choices []string

		// Check is an optional extra validation applied to present values
		Check func(string) error
	}
)

const (
	String Kind = iota
	Bool
	Path
	Enum
	YAML
)

const (
	None Constraint = iota
	MustExist
	MustBeDir
	MustBeFile
)

func (c Constraint) String() string {
	switch c {
	case MustExist:
		return "an existing path"
	case MustBeDir:
		return "an existing directory"
	case MustBeFile:
		return "an existing file"
	}

	return "any path"
}

// Names returns the option name followed by its aliases.
func (o Option) Names() []string {
	return append([]string{o.Name}, o.Aliases...)
}

// FlagName renders the primary flag as typed on the command line.
func (o Option) FlagName() string {
	return flagToken(o.Name)
}

// Flag converts the declaration into a urfave flag for help rendering. The
// environment variable is read from the process environment.
func (o Option) Flag() cli.Flag {
	return o.flag(cli.EnvVars(o.envVars()...), true)
}

func (o Option) flag(src cli.ValueSourceChain, withDefault bool) cli.Flag {
	if o.Kind == Bool {
		f := &cli.BoolFlag{
			Name:    o.Name,
			Aliases: o.Aliases,
			Usage:   o.Usage,
			Sources: src,
		}
		if withDefault {
			f.Value = o.BoolDefault
		}
		return f
	}

	f := &cli.StringFlag{
		Name:        o.Name,
		Aliases:     o.Aliases,
		Usage:       o.usage(),
		Sources:     src,
		DefaultText: o.DefaultText,
	}
	if withDefault {
		f.Value = o.Default
	}
	return f
}

func (o Option) usage() string {
	if o.Kind == Enum && len(o.Choices) > 0 {
		return fmt.Sprintf("%s (one of: %s)", o.Usage, strings.Join(o.Choices, ", "))
	}
	return o.Usage
}

func (o Option) envVars() []string {
	if o.EnvVar == "" {
		return nil
	}
	return []string{o.EnvVar}
}

// Validate checks a set of declarations for duplicate names and malformed
// entries.
func Validate(opts []Option) error {
	seen := make(map[string]string)
	for _, o := range opts {
		if o.Name == "" {
			return errors.New("option declared without a name")
		}

		for _, n := range o.Names() {
			if prev, ok := seen[n]; ok {
				return errors.Errorf("option name %s declared by both %s and %s", flagToken(n), flagToken(prev), o.FlagName())
			}
			seen[n] = o.Name
		}

		if o.Kind == Enum && len(o.Choices) == 0 {
			return errors.Errorf("enum option %s declares no choices", o.FlagName())
		}

		if o.Kind == Bool && o.Default != "" {
			return errors.Errorf("bool option %s sets Default, use BoolDefault", o.FlagName())
		}
	}

	return nil
}

func flagToken(name string) string {
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}
