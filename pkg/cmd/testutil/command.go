package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/datacoves/dbt-coves/pkg/executor"
)

// FakeRunner records commands instead of running them. Errors and Outputs
// are keyed by command line prefix, e.g. "dbt debug".
type FakeRunner struct {
	mu       sync.Mutex
	commands []executor.Cmd

	Errors  map[string]error
	Outputs map[string]string
}

// NewFakeRunner returns a runner where every command succeeds silently.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Errors: map[string]error{}, Outputs: map[string]string{}}
}

// Fail makes commands starting with prefix exit with code.
func (f *FakeRunner) Fail(prefix string, code int) *FakeRunner {
	f.Errors[prefix] = &executor.ExitError{Command: prefix, Code: code}
	return f
}

func (f *FakeRunner) Run(_ context.Context, c executor.Cmd) error {
	f.record(c)
	return f.errorFor(c)
}

func (f *FakeRunner) Output(_ context.Context, c executor.Cmd) (string, error) {
	f.record(c)
	if err := f.errorFor(c); err != nil {
		return "", err
	}

	for prefix, out := range f.Outputs {
		if strings.HasPrefix(c.String(), prefix) {
			return out, nil
		}
	}
	return "", nil
}

// Commands returns the recorded command lines in order.
func (f *FakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]string, len(f.commands))
	for i, c := range f.commands {
		lines[i] = c.String()
	}
	return lines
}

// Cmds returns the recorded commands in order.
func (f *FakeRunner) Cmds() []executor.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]executor.Cmd(nil), f.commands...)
}

func (f *FakeRunner) record(c executor.Cmd) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, c)
}

func (f *FakeRunner) errorFor(c executor.Cmd) error {
	for prefix, err := range f.Errors {
		if strings.HasPrefix(c.String(), prefix) {
			return err
		}
	}
	return nil
}
