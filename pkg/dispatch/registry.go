package dispatch

import (
	"fmt"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/options"
)

// Registry is the static command tree. It is built once at startup and only
// read afterwards.
type Registry struct {
	root *CommandSpec
}

// NewRegistry creates an empty tree whose root is named after the binary.
func NewRegistry(name, usage string) *Registry {
	return &Registry{root: &CommandSpec{Name: name, Usage: usage}}
}

// Root returns the root command group.
func (r *Registry) Root() *CommandSpec {
	return r.root
}

// Register adds spec, including its subtree, as a child of parent. A nil
// parent means the root.
//
// It fails with *ConfigurationError when parent is bound to a task, when a
// sibling already uses the name, when a leaf has no task or a group has one,
// or when option declarations are malformed.
func (r *Registry) Register(parent, spec *CommandSpec) error {
	if parent == nil {
		parent = r.root
	}

	if spec == nil || spec.Name == "" {
		return &ConfigurationError{Command: parent.Name, Reason: "child command without a name"}
	}

	if strings.HasPrefix(spec.Name, "-") || strings.ContainsAny(spec.Name, " \t") {
		return &ConfigurationError{Command: spec.Name, Reason: "name must be a single word not starting with a dash"}
	}

	if parent.New != nil {
		return &ConfigurationError{Command: parent.Name, Reason: "cannot add a subcommand to a command bound to a task"}
	}

	if parent.Child(spec.Name) != nil {
		return &ConfigurationError{Command: spec.Name, Reason: fmt.Sprintf("already registered under %q", parent.Name)}
	}

	if err := validate(spec); err != nil {
		return err
	}

	spec.parent = parent
	parent.Commands = append(parent.Commands, spec)
	return nil
}

func validate(spec *CommandSpec) error {
	if spec.IsLeaf() && spec.New == nil {
		return &ConfigurationError{Command: spec.Name, Reason: "leaf command has no task"}
	}

	if !spec.IsLeaf() && spec.New != nil {
		return &ConfigurationError{Command: spec.Name, Reason: "command group cannot bind a task"}
	}

	if err := options.Validate(spec.Options); err != nil {
		return &ConfigurationError{Command: spec.Name, Reason: err.Error()}
	}

	seen := make(map[string]bool, len(spec.Commands))
	for _, c := range spec.Commands {
		if c == nil || c.Name == "" {
			return &ConfigurationError{Command: spec.Name, Reason: "child command without a name"}
		}
		if seen[c.Name] {
			return &ConfigurationError{Command: c.Name, Reason: fmt.Sprintf("already registered under %q", spec.Name)}
		}
		seen[c.Name] = true

		if err := validate(c); err != nil {
			return err
		}
		c.parent = spec
	}

	return nil
}

// Resolve walks the tree matching leading tokens to command names. It stops
// at the first leaf, or at the first token starting with a dash, and returns
// that command with the unconsumed tokens for option parsing.
//
// Positional tokens that match no child of the current group fail with
// *UnknownCommandError.
func (r *Registry) Resolve(tokens []string) (*CommandSpec, []string, error) {
	node := r.root
	for i, tok := range tokens {
		if node.IsLeaf() || strings.HasPrefix(tok, "-") {
			return node, tokens[i:], nil
		}

		child := node.Child(tok)
		if child == nil {
			return nil, nil, &UnknownCommandError{
				Token:   tok,
				Parent:  strings.Join(append([]string{r.root.Name}, node.Path()...), " "),
				Choices: node.ChildNames(),
			}
		}

		node = child
	}

	return node, nil, nil
}
