package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// stderrTail bounds how much captured stderr an ExitError keeps.
const stderrTail = 2048

// ErrNotFound is wrapped by errors for programs that are not on PATH.
var ErrNotFound = errors.New("executable not found")

type (
	// Executor runs external commands.
	Executor struct {
		env    []string
		logger *slog.Logger
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// Env is appended to the process environment for every command
		Env []string

		// Logger receives a debug record per command. Defaults to slog.Default().
		Logger *slog.Logger
	}

	// Cmd describes a single invocation.
	Cmd struct {
		// Dir is the working directory; empty means the current one
		Dir string

		// Name is the program, resolved through PATH
		Name string

		Args []string

		// Env is appended after the executor's own environment
		Env []string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// ExitError reports a command that ran but exited nonzero.
	ExitError struct {
		Command string
		Code    int
		Stderr  string
	}
)

// New creates an Executor.
func New(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{env: cfg.Env, logger: logger}
}

// String renders the command line.
func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Command, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Run executes c, streaming output to c.Stdout and c.Stderr.
func (e *Executor) Run(ctx context.Context, c Cmd) error {
	cmd, err := e.command(ctx, c)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd.Stdout = c.Stdout
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderr)
	}

	return e.wait(c, cmd.Run(), &stderr)
}

// Output executes c and returns its trimmed stdout.
func (e *Executor) Output(ctx context.Context, c Cmd) (string, error) {
	cmd, err := e.command(ctx, c)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderr)
	}

	if err := e.wait(c, cmd.Run(), &stderr); err != nil {
		return "", err
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (e *Executor) command(ctx context.Context, c Cmd) (*exec.Cmd, error) {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "%s", c.Name)
	}

	e.logger.Debug("running command", "cmd", c.String(), "dir", c.Dir)

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	if len(e.env) > 0 || len(c.Env) > 0 {
		cmd.Env = append(append(os.Environ(), e.env...), c.Env...)
	}

	return cmd, nil
}

func (e *Executor) wait(c Cmd, err error, stderr *bytes.Buffer) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		tail := strings.TrimSpace(stderr.String())
		if len(tail) > stderrTail {
			tail = tail[len(tail)-stderrTail:]
		}
		return &ExitError{Command: c.String(), Code: exitErr.ExitCode(), Stderr: tail}
	}

	return errors.Wrapf(err, "failed to run %s", c.Name)
}
