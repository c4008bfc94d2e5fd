// Package ui renders the human facing output of dbt-coves tasks: aligned
// status rows for setup steps, summary tables and a progress spinner for slow
// external calls.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/termenv"
)

const (
	keyWidth   = 50
	valueWidth = 30
)

// Console writes task output to a single writer.
type Console struct {
	w   io.Writer
	out *termenv.Output
}

// New creates a Console. Colors follow the terminal capabilities of w unless
// overridden with termenv options, e.g. termenv.WithProfile(termenv.Ascii).
func New(w io.Writer, opts ...termenv.OutputOption) *Console {
	return &Console{w: w, out: termenv.NewOutput(w, opts...)}
}

// Writer returns the underlying writer.
func (c *Console) Writer() io.Writer {
	return c.w
}

// Row prints key left aligned and value right aligned in fixed columns.
func (c *Console) Row(key, value string) {
	fmt.Fprintf(c.w, "%s%s\n", text.AlignLeft.Apply(key, keyWidth), text.AlignRight.Apply(value, valueWidth))
}

// Found prints a row marking key as present or done.
func (c *Console) Found(key string) {
	c.Row(key, c.Success("FOUND ✓"))
}

// Section starts a new block of rows.
func (c *Console) Section(title string) {
	fmt.Fprintf(c.w, "\n%s\n", c.out.String(title).Bold())
}

// Println prints a plain line.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.w, a...)
}

// Success colors s green.
func (c *Console) Success(s string) string {
	return c.out.String(s).Foreground(c.out.Color("2")).String()
}

// Warn colors s yellow.
func (c *Console) Warn(s string) string {
	return c.out.String(s).Foreground(c.out.Color("3")).String()
}

// Fail colors s red.
func (c *Console) Fail(s string) string {
	return c.out.String(s).Foreground(c.out.Color("1")).String()
}

// Table renders rows under header.
func (c *Console) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(c.w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(toRow(header))
	for _, r := range rows {
		t.AppendRow(toRow(r))
	}

	t.Render()
}

// Spin runs fn while showing msg next to a spinner. The spinner only runs
// when the console writes to a color capable terminal.
func (c *Console) Spin(msg string, fn func() error) error {
	f, ok := c.w.(*os.File)
	if !ok || c.out.Profile == termenv.Ascii {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f))
	s.Suffix = " " + msg
	s.Start()

	err := fn()
	if err != nil {
		s.FinalMSG = c.Fail("✗ "+msg) + "\n"
	}
	s.Stop()

	return err
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}
