// Package options resolves command line arguments into a read-only set of
// option values.
//
// Commands declare their options as a slice of Option. Parse merges, for each
// declaration, an explicit flag, the bound environment variable and the static
// default, in that order of precedence, and validates the winner:
//
//   - Path options are checked against their existence Constraint
//   - Enum options must match one of their Choices
//   - YAML options must decode to a mapping
//
// Options with no flag, no environment value and no default resolve to the
// absent marker (a zero Value), which Resolved.Has reports as false.
//
// Flag syntax follows urfave/cli: "--name value", "--name=value", "-n value"
// for single letter aliases and bare "--flag" for booleans.
package options
