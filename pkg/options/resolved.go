package options

import "maps"

type (
	// Source records where a resolved value came from. The zero value is
	// Absent, so a zero Value is the absent marker.
	Source int

	// Value is a single resolved option value.
	Value struct {
		raw    string
		flag   bool
		vars   map[string]any
		source Source
	}

	// Resolved is the merged, validated result of parsing one invocation's
	// arguments. It is read-only once returned by Parse.
	Resolved struct {
		names  []string
		values map[string]Value
	}
)

const (
	Absent Source = iota
	FromDefault
	FromEnv
	FromFlag
)

func (s Source) String() string {
	switch s {
	case FromDefault:
		return "default"
	case FromEnv:
		return "environment"
	case FromFlag:
		return "flag"
	}

	return "absent"
}

// Present reports whether the value is anything but the absent marker.
func (v Value) Present() bool { return v.source != Absent }

// Source returns where the value came from.
func (v Value) Source() Source { return v.source }

// String returns the raw value, empty when absent. Bool values render as
// "true" or "false".
func (v Value) String() string { return v.raw }

// Bool returns the boolean value. Absent and non-boolean values are false.
func (v Value) Bool() bool { return v.flag }

// Vars returns the decoded mapping of a YAML option.
func (v Value) Vars() map[string]any { return maps.Clone(v.vars) }

// NewResolved builds a Resolved from plain string values, all marked as
// coming from flags. It is intended for tests and programmatic callers.
func NewResolved(values map[string]string) *Resolved {
	r := &Resolved{values: make(map[string]Value, len(values))}
	for name, raw := range values {
		r.set(name, Value{raw: raw, flag: raw == "true", source: FromFlag})
	}
	return r
}

func (r *Resolved) set(name string, v Value) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

// Names returns the declared option names in declaration order.
func (r *Resolved) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the value for name. Undeclared names yield the absent marker.
func (r *Resolved) Get(name string) Value {
	if r == nil {
		return Value{}
	}
	return r.values[name]
}

// Has reports whether name resolved to a present value.
func (r *Resolved) Has(name string) bool {
	return r.Get(name).Present()
}

// String returns the string value for name, empty when absent.
func (r *Resolved) String(name string) string {
	return r.Get(name).String()
}

// Bool returns the boolean value for name, false when absent.
func (r *Resolved) Bool(name string) bool {
	return r.Get(name).Bool()
}

// Path returns the path value for name. Existence constraints were enforced
// by Parse.
func (r *Resolved) Path(name string) string {
	return r.Get(name).raw
}

// Vars returns the decoded YAML mapping for name, nil when absent.
func (r *Resolved) Vars(name string) map[string]any {
	return r.Get(name).Vars()
}
