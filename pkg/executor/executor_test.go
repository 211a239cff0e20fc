package executor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecuteCapturesStdout(t *testing.T) {
	script := writeScript(t, `echo "hello $1"`)

	res, err := New().Execute(context.Background(), script, "world")
	require.NoError(t, err)
	require.Equal(t, "hello world\n", res.Stdout)
	require.Equal(t, 0, res.ExitCode)
}

func TestExecuteReturnsOutputOnFailure(t *testing.T) {
	script := writeScript(t, "echo partial\necho boom >&2\nexit 3")

	res, err := New().Execute(context.Background(), script)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
	require.Equal(t, "partial\n", res.Stdout)
	require.Equal(t, 3, res.ExitCode)
}

func TestExecuteHandlesLargeOutput(t *testing.T) {
	// ~2 MB of output must come back intact.
	script := writeScript(t, `i=0; while [ $i -lt 20000 ]; do echo "0123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890123456789"; i=$((i+1)); done`)

	res, err := New().Execute(context.Background(), script)
	require.NoError(t, err)
	require.Equal(t, 20000, strings.Count(res.Stdout, "\n"))
}

func TestExecuteInDir(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, "pwd")

	res, err := New().ExecuteInDir(context.Background(), dir, script)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(res.Stdout))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestExecuteMissingBinary(t *testing.T) {
	res, err := New().Execute(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	require.Equal(t, -1, res.ExitCode)
	require.Empty(t, res.Stdout)
}
