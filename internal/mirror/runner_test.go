package mirror

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool writes an executable shell script that stands in for lftp.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakelftp")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)
	require.NoError(t, err)
	return path
}

func TestRunnerCapturesOutputAndExitCode(t *testing.T) {
	tool := fakeTool(t, "echo one\necho two\nexit 3\n")
	r := NewRunner(tool, nil)

	lines, code, err := r.Run(context.Background(), "unused", false)
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestRunnerQuietFoldsStderr(t *testing.T) {
	tool := fakeTool(t, "echo out\necho diag >&2\n")
	r := NewRunner(tool, nil)

	lines, code, err := r.Run(context.Background(), "unused", true)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, lines, "out")
	assert.Contains(t, lines, "diag")
}

func TestRunnerMissingBinary(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "no-such-tool"), nil)

	_, code, err := r.Run(context.Background(), "unused", false)
	require.Error(t, err)
	var transferErr *TransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Equal(t, -1, code)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a"}, splitLines("a\n"))
	assert.Equal(t, []string{"a", "", "b"}, splitLines("a\n\nb"))
}
