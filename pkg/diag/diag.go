// Package diag presents failures that reach the top of a dbt-coves process.
//
// A Reporter never decides whether an invocation failed; it only renders the
// error and maps it to an exit code. By default only a one-line summary is
// printed. With verbose enabled the full error detail is shown, including
// the stack recorded by github.com/pkg/errors.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// Reporter renders uncaught errors.
type Reporter struct {
	out     *termenv.Output
	verbose bool
}

// New creates a Reporter writing to w. Color is enabled according to the
// environment unless overridden with termenv options.
func New(w io.Writer, opts ...termenv.OutputOption) *Reporter {
	return &Reporter{out: termenv.NewOutput(w, opts...)}
}

// SetVerbose switches between summary and full detail output.
func (r *Reporter) SetVerbose(v bool) {
	r.verbose = v
}

// Report prints err and returns its exit code. A nil error prints nothing and
// returns ExitOK; any other error yields a nonzero code.
func (r *Reporter) Report(err error) int {
	if err == nil {
		return consts.ExitOK
	}

	label := r.out.String("Error:").Foreground(r.out.Color("1")).Bold()
	if r.verbose {
		fmt.Fprintf(r.out, "%s %+v\n", label, err)
	} else {
		fmt.Fprintf(r.out, "%s %s\n", label, Summary(err))
	}

	return ExitCode(err)
}

// Guard runs fn and reports whatever it returns. A panic inside fn is
// recovered, converted to an error carrying the stack and reported as a
// generic failure.
func (r *Reporter) Guard(fn func() (int, error)) (code int) {
	defer func() {
		if p := recover(); p != nil {
			code = r.Report(errors.Errorf("unexpected panic: %v", p))
		}
	}()

	code, err := fn()
	if err != nil {
		return r.Report(err)
	}

	return code
}

// Summary returns the first line of the error message.
func Summary(err error) string {
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return strings.TrimSpace(msg)
}

// ExitCode maps err to a process exit code. Errors implementing
// cli.ExitCoder anywhere in their chain provide their own code; everything
// else is ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return consts.ExitOK
	}

	var coder cli.ExitCoder
	if errors.As(err, &coder) && coder.ExitCode() != consts.ExitOK {
		return coder.ExitCode()
	}

	return consts.ExitFailure
}
