// Package logging owns the process-wide slog configuration for dbt-coves.
//
// The level is held in a single slog.LevelVar shared by every logger built
// from this package. Configure may change it once per process; there is no
// teardown since a dbt-coves process handles exactly one command.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	level      = new(slog.LevelVar)
	configured bool
	mu         sync.Mutex
)

// New creates a logger writing text records to w at the shared level.
// The "error" attribute key is normalized to "err".
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// Default returns a stderr logger and installs it as the slog default.
func Default() *slog.Logger {
	l := New(os.Stderr)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps the user facing level names onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	}

	return slog.LevelInfo, errors.Errorf("unknown log level: %q", s)
}

// Configure sets the process-wide level. Only the first call has an effect;
// it reports whether this call changed the level.
func Configure(l slog.Level) bool {
	mu.Lock()
	defer mu.Unlock()

	if configured {
		return false
	}

	level.Set(l)
	configured = true
	return true
}

func reset() {
	mu.Lock()
	defer mu.Unlock()

	configured = false
	level.Set(slog.LevelInfo)
}
