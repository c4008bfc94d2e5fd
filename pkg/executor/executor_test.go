package executor_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/datacoves/dbt-coves/pkg/executor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func sh(script string) executor.Cmd {
	return executor.Cmd{Name: "sh", Args: []string{"-c", script}}
}

func TestExecutor_Output(t *testing.T) {
	exec := executor.New(executor.Config{})

	out, err := exec.Output(context.Background(), sh("echo hello; echo"))
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestExecutor_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("streams output", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		cmd := sh("echo out; echo err >&2")
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		require.NoError(t, executor.New(executor.Config{}).Run(ctx, cmd))
		require.Equal(t, "out\n", stdout.String())
		require.Equal(t, "err\n", stderr.String())
	})

	t.Run("working directory", func(t *testing.T) {
		dir := t.TempDir()
		cmd := sh("pwd")
		cmd.Dir = dir

		out, err := executor.New(executor.Config{}).Output(ctx, cmd)
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(out, dir[strings.LastIndex(dir, "/"):]))
	})

	t.Run("environment", func(t *testing.T) {
		exec := executor.New(executor.Config{Env: []string{"FROM_EXECUTOR=a"}})
		cmd := sh(`echo "$FROM_EXECUTOR-$FROM_CMD"`)
		cmd.Env = []string{"FROM_CMD=b"}

		out, err := exec.Output(ctx, cmd)
		require.NoError(t, err)
		require.Equal(t, "a-b", out)
	})

	t.Run("nonzero exit", func(t *testing.T) {
		err := executor.New(executor.Config{}).Run(ctx, sh("echo broken >&2; exit 3"))

		var exitErr *executor.ExitError
		require.True(t, errors.As(err, &exitErr))
		require.Equal(t, 3, exitErr.Code)
		require.Equal(t, "broken", exitErr.Stderr)
		require.Equal(t, `command "sh -c echo broken >&2; exit 3" exited with status 3: broken`, err.Error())
	})

	t.Run("missing program", func(t *testing.T) {
		err := executor.New(executor.Config{}).Run(ctx, executor.Cmd{Name: "dbt-coves-does-not-exist"})
		require.True(t, errors.Is(err, executor.ErrNotFound))
		require.Contains(t, err.Error(), "dbt-coves-does-not-exist")
	})
}
