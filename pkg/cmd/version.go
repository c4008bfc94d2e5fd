package cmd

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/dispatch"
	"github.com/datacoves/dbt-coves/pkg/executor"
	"github.com/muesli/termenv"
)

var dbtVersionPattern = regexp.MustCompile(`installed(?: version)?:\s*v?(\S+)`)

// Version is the build information stamped in at link time.
type Version struct {
	Version   string
	Commit    string
	Timestamp string
}

// versionBanner prints the dbt-coves build and the installed dbt version.
// dbt is optional; when it cannot be run the banner says so instead of
// failing.
func versionBanner(v *Version, runner commandRunner) dispatch.VersionFunc {
	return func(ctx context.Context, w io.Writer) error {
		out := termenv.NewOutput(w)
		title := out.String(consts.AppName).Foreground(out.Color("6")).Bold()

		if _, err := fmt.Fprintf(out, "%s v%s\n", title, orUnknown(v.Version)); err != nil {
			return err
		}
		fmt.Fprintf(out, "  commit: %s\n", orUnknown(v.Commit))
		fmt.Fprintf(out, "  built:  %s\n", orUnknown(v.Timestamp))

		dbt := "not installed"
		if raw, err := runner.Output(ctx, executor.Cmd{Name: "dbt", Args: []string{"--version"}}); err == nil {
			dbt = parseDbtVersion(raw)
		}

		_, err := fmt.Fprintf(out, "%s %s\n", out.String("dbt").Bold(), dbt)
		return err
	}
}

func parseDbtVersion(raw string) string {
	if m := dbtVersionPattern.FindStringSubmatch(raw); m != nil {
		return "v" + m[1]
	}
	return "unknown"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
