package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		" info ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := ParseLevel(in)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown log level")
}

func TestConfigure_OnlyOnce(t *testing.T) {
	reset()
	t.Cleanup(reset)

	log := New(io.Discard)
	ctx := context.Background()

	require.False(t, log.Enabled(ctx, slog.LevelDebug))
	require.True(t, Configure(slog.LevelDebug))
	require.True(t, log.Enabled(ctx, slog.LevelDebug))

	// later calls keep the first level
	require.False(t, Configure(slog.LevelError))
	require.True(t, log.Enabled(ctx, slog.LevelDebug))
}

func TestNew_UsesSharedLevel(t *testing.T) {
	reset()
	t.Cleanup(reset)

	var buf bytes.Buffer
	log := New(&buf)

	log.Debug("hidden")
	require.Empty(t, buf.String())

	Configure(slog.LevelDebug)
	log.Debug("shown", "error", "boom")
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "err=boom")
}
