package options

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Env looks up an environment variable. os.LookupEnv satisfies it.
type Env func(key string) (string, bool)

// OSEnv reads the process environment.
var OSEnv Env = os.LookupEnv

// envSource feeds an injectable environment into urfave's value source chain.
// Empty values count as unset.
type envSource struct {
	key string
	env Env
}

func (s *envSource) Lookup() (string, bool) {
	v, ok := s.env(s.key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *envSource) String() string   { return fmt.Sprintf("environment variable %q", s.key) }
func (s *envSource) GoString() string { return fmt.Sprintf("&envSource{key:%q}", s.key) }

// Parse resolves args against the declared options.
//
// For each option the first present value wins among: an explicit flag in
// args, the bound environment variable, the static default. Options with none
// of these resolve to the absent marker. Path options are checked against
// their existence constraint immediately.
//
// Undeclared flags and positional tokens fail with *UnknownOptionError;
// constraint violations fail with *InvalidOptionError.
//
// Example:
//
//	opts, err := options.Parse(decls, []string{"--project-dir", "./dbt"}, options.OSEnv)
//	if err != nil {
//		return err
//	}
//
//	dir := opts.Path("project-dir")
func Parse(decls []Option, args []string, env Env) (*Resolved, error) {
	if err := Validate(decls); err != nil {
		return nil, err
	}

	if env == nil {
		env = OSEnv
	}

	explicit, err := scan(decls, args)
	if err != nil {
		return nil, err
	}

	flags := make([]cli.Flag, len(decls))
	for i, d := range decls {
		var src cli.ValueSourceChain
		if d.EnvVar != "" {
			src = cli.NewValueSourceChain(&envSource{key: d.EnvVar, env: env})
		}
		flags[i] = d.flag(src, false)
	}

	parsed := &cli.Command{
		Name:           "dbt-coves",
		Flags:          flags,
		HideHelp:       true,
		HideVersion:    true,
		Writer:         io.Discard,
		ErrWriter:      io.Discard,
		OnUsageError:   func(_ context.Context, _ *cli.Command, err error, _ bool) error { return err },
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action:         func(context.Context, *cli.Command) error { return nil },
	}

	if err := parsed.Run(context.Background(), append([]string{parsed.Name}, args...)); err != nil {
		return nil, errors.Wrap(err, "failed to parse arguments")
	}

	res := &Resolved{values: make(map[string]Value, len(decls))}
	for i, d := range decls {
		v := resolve(d, flags[i], parsed, explicit[d.Name])
		if err := check(d, v); err != nil {
			return nil, err
		}

		if d.Kind == YAML && v.Present() {
			vars, err := decodeVars(d, v)
			if err != nil {
				return nil, err
			}
			v.vars = vars
		}

		res.set(d.Name, v)
	}

	return res, nil
}

// scan walks the raw tokens before urfave sees them so unknown flags and
// stray positionals are reported with the offending token. It returns the set
// of option names given explicitly.
func scan(decls []Option, args []string) (map[string]bool, error) {
	index := make(map[string]Option)
	for _, d := range decls {
		for _, n := range d.Names() {
			index[n] = d
		}
	}

	explicit := make(map[string]bool)
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			if i+1 < len(args) {
				return nil, &UnknownOptionError{Token: args[i+1]}
			}
			break
		}

		if len(tok) < 2 || !strings.HasPrefix(tok, "-") {
			return nil, &UnknownOptionError{Token: tok}
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(tok, "-"), "=")
		d, ok := index[name]
		if !ok {
			return nil, &UnknownOptionError{Token: tok}
		}
		explicit[d.Name] = true

		if d.Kind == Bool {
			if hasValue {
				if _, err := strconv.ParseBool(value); err != nil {
					return nil, &InvalidOptionError{Option: d.Name, Value: value, Expected: "a boolean", Source: FromFlag}
				}
			}
			continue
		}

		if !hasValue {
			if i+1 >= len(args) {
				return nil, &InvalidOptionError{Option: d.Name, Reason: "flag needs an argument", Source: FromFlag}
			}
			i++
		}
	}

	return explicit, nil
}

func resolve(d Option, f cli.Flag, cmd *cli.Command, explicit bool) Value {
	if f.IsSet() {
		src := FromEnv
		if explicit {
			src = FromFlag
		}

		if d.Kind == Bool {
			b := cmd.Bool(d.Name)
			return Value{raw: strconv.FormatBool(b), flag: b, source: src}
		}
		return Value{raw: cmd.String(d.Name), source: src}
	}

	if d.Kind == Bool {
		return Value{raw: strconv.FormatBool(d.BoolDefault), flag: d.BoolDefault, source: FromDefault}
	}

	if d.Default != "" {
		return Value{raw: d.Default, source: FromDefault}
	}

	return Value{}
}

func check(d Option, v Value) error {
	if !v.Present() {
		return nil
	}

	invalid := func(expected string) error {
		return &InvalidOptionError{Option: d.Name, Value: v.raw, Expected: expected, Source: v.source, EnvVar: d.EnvVar}
	}

	switch d.Kind {
	case Path:
		if d.Constraint == None {
			break
		}

		info, err := os.Stat(v.raw)
		if err != nil {
			return invalid(d.Constraint.String())
		}
		if d.Constraint == MustBeDir && !info.IsDir() {
			return invalid(d.Constraint.String())
		}
		if d.Constraint == MustBeFile && !info.Mode().IsRegular() {
			return invalid(d.Constraint.String())
		}
	case Enum:
		if !slices.Contains(d.Choices, v.raw) {
			return invalid("one of " + strings.Join(d.Choices, ", "))
		}
	}

	if d.Check != nil {
		if err := d.Check(v.raw); err != nil {
			return &InvalidOptionError{Option: d.Name, Value: v.raw, Reason: err.Error(), Source: v.source, EnvVar: d.EnvVar}
		}
	}

	return nil
}

func decodeVars(d Option, v Value) (map[string]any, error) {
	var vars map[string]any
	if err := yaml.Unmarshal([]byte(v.raw), &vars); err != nil || vars == nil {
		return nil, &InvalidOptionError{Option: d.Name, Value: v.raw, Expected: "a YAML mapping", Source: v.source, EnvVar: d.EnvVar}
	}

	return vars, nil
}
