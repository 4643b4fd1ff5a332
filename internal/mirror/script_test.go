package mirror

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, tokens ...string) *Job {
	t.Helper()
	job, err := ParseArgs(tokens)
	require.NoError(t, err)
	return job
}

func TestBuildScriptAnonymousPlain(t *testing.T) {
	job := mustParse(t, "ftp.example.com", "/pub", "mirror", "-a")

	want := strings.Join([]string{
		"open ftp://ftp.example.com",
		"user ",
		"set ssl:verify-certificate no",
		"mirror -vvv '/pub' 'mirror'",
		"exit",
	}, "\n") + "\n"

	assert.Equal(t, want, BuildScript(job))
}

func TestBuildScriptSecureLogin(t *testing.T) {
	job := mustParse(t, "sftp.example.com", "/pub", "mirror", "-l", "john", "secret", "-s", "-p", "2222")

	want := strings.Join([]string{
		"open sftp://sftp.example.com -p 2222",
		"user john secret",
		"set ssl:verify-certificate no",
		"set sftp:auto-confirm yes",
		"mirror -vvv '/pub' 'mirror'",
		"exit",
	}, "\n") + "\n"

	assert.Equal(t, want, BuildScript(job))
}

func TestBuildScriptSSLVerifySuppressesAutoConfirm(t *testing.T) {
	job := mustParse(t, "sftp.example.com", "/pub", "mirror", "-a", "-s", "--ssl-verify")

	got := BuildScript(job)
	assert.Contains(t, got, "set ssl:verify-certificate yes")
	assert.NotContains(t, got, "sftp:auto-confirm")
}

func TestBuildScriptReverseSwapsDirections(t *testing.T) {
	job := mustParse(t, "ftp.example.com", "/pub", "mirror", "-a", "-r")

	got := BuildScript(job)
	assert.Contains(t, got, "mirror -vvvR 'mirror' '/pub'")
}

func TestBuildScriptDeterministic(t *testing.T) {
	job := mustParse(t, "ftp.example.com", "/pub", "mirror", "-a",
		"-e", "-n", "--compress", "--include-glob", "*.iso", "--exclude-glob", "*.tmp")

	assert.Equal(t, BuildScript(job), BuildScript(job))
}

func TestMirrorArgsOrdering(t *testing.T) {
	job := mustParse(t, "ftp.example.com", "/pub", "mirror", "-a",
		"-e", "-n",
		"--delete-first", "--del-source", "--no-perms",
		"--include-glob", "*.iso", "--include-glob", "*.img",
		"--exclude-glob", "*.tmp",
		"--parallel=3")

	got := job.MirrorArgs()
	want := "-vvven --delete-first --Remove-source-files --no-perms" +
		" --include-glob *.iso --include-glob *.img --exclude-glob *.tmp --parallel=3"
	assert.Equal(t, want, got)
}

func TestMirrorArgsBare(t *testing.T) {
	job := mustParse(t, "ftp.example.com", "/pub", "mirror", "-a")
	assert.Equal(t, "-vvv", job.MirrorArgs())
}

func TestWriteScript(t *testing.T) {
	dir := t.TempDir()
	job := mustParse(t, "ftp.example.com", "/pub", "mirror", "-a")

	path, err := WriteScript(job, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ftpscript"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, BuildScript(job), string(data))
}
