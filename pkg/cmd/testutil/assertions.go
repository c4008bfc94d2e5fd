package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		for _, check := range checks {
			check(string(content))
		}
	}
}

// RequireFileContains asserts that path exists and contains every substring.
func RequireFileContains(t *testing.T, path string, substrings ...string) {
	t.Helper()

	RequireFileExists(t, path, func(content string) {
		for _, s := range substrings {
			require.Contains(t, content, s, "File %s should contain %q", path, s)
		}
	})
}

// RequireFileContent asserts the exact content of path.
func RequireFileContent(t *testing.T, path, want string) {
	t.Helper()

	RequireFileExists(t, path, func(content string) {
		require.Equal(t, want, content)
	})
}

// RequireNoFile asserts that path does not exist.
func RequireNoFile(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "File should not exist: %s", path)
}

// RequireCommandsInOrder asserts that each prefix matches a recorded command,
// in order, allowing other commands in between.
func RequireCommandsInOrder(t *testing.T, commands []string, prefixes ...string) {
	t.Helper()

	i := 0
	for _, c := range commands {
		if i < len(prefixes) && strings.HasPrefix(c, prefixes[i]) {
			i++
		}
	}

	require.Equal(t, len(prefixes), i, "commands %q do not contain %q in order", commands, prefixes)
}
