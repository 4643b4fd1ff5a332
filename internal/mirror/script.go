package mirror

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// scriptName is the fixed name of the ephemeral lftp command script,
// written into the working directory per run and removed afterwards.
const scriptName = "ftpscript"

// MirrorArgs renders the argument string of the script's mirror command.
// Single-letter options are folded into the leading verbosity flag the way
// lftp accepts them; long options, glob filters and the parallelism flag
// follow in a fixed order so the rendering is deterministic.
func (j *Job) MirrorArgs() string {
	var b strings.Builder
	b.WriteString("-vvv")
	if j.Options.Erase {
		b.WriteString("e")
	}
	if j.Options.Newer {
		b.WriteString("n")
	}
	if j.Reverse {
		b.WriteString("R")
	}

	long := []struct {
		set  bool
		flag string
	}{
		{j.Options.DeleteFirst, "--delete-first"},
		{j.Options.DepthFirst, "--depth-first"},
		{j.Options.NoEmptyDirs, "--no-empty-dirs"},
		{j.Options.NoRecursion, "--no-recursion"},
		{j.Options.DryRun, "--dry-run"},
		{j.Options.UseCache, "--use-cache"},
		{j.Options.DelSource, "--Remove-source-files"},
		{j.Options.OnlyMissing, "--only-missing"},
		{j.Options.OnlyExisting, "--only-existing"},
		{j.Options.Loop, "--loop"},
		{j.Options.IgnoreSize, "--ignore-size"},
		{j.Options.IgnoreTime, "--ignore-time"},
		{j.Options.NoPerms, "--no-perms"},
		{j.Options.NoUmask, "--no-umask"},
		{j.Options.NoSymlinks, "--no-symlinks"},
		{j.Options.AllowSUID, "--allow-suid"},
		{j.Options.AllowChown, "--allow-chown"},
		{j.Options.Dereference, "--dereference"},
	}
	for _, o := range long {
		if o.set {
			b.WriteString(" " + o.flag)
		}
	}

	for _, g := range j.IncludeGlobs {
		b.WriteString(" --include-glob " + g)
	}
	for _, g := range j.ExcludeGlobs {
		b.WriteString(" --exclude-glob " + g)
	}
	if j.Parallel > 0 {
		fmt.Fprintf(&b, " --parallel=%d", j.Parallel)
	}

	return b.String()
}

// BuildScript renders a job into the lftp command script. The rendering is
// a pure function of the job: the same descriptor always yields
// byte-identical script text.
func BuildScript(j *Job) string {
	scheme := "ftp"
	if j.Secure {
		scheme = "sftp"
	}

	open := fmt.Sprintf("open %s://%s", scheme, j.Site)
	if j.Port != "" {
		open += " -p " + j.Port
	}

	verify := "no"
	if j.SSLVerify {
		verify = "yes"
	}

	src, dst := j.Remote, j.Local
	if j.Reverse {
		src, dst = j.Local, j.Remote
	}

	lines := []string{
		open,
		"user " + j.Credentials.loginField(),
		"set ssl:verify-certificate " + verify,
	}
	// Convenience default for secure sessions: unless certificate
	// verification was explicitly requested, auto-confirm the host so
	// unattended runs don't hang on the prompt. Must stay directly after
	// the verification setting.
	if j.Secure && !j.SSLVerify {
		lines = append(lines, "set sftp:auto-confirm yes")
	}
	lines = append(lines,
		fmt.Sprintf("mirror %s '%s' '%s'", j.MirrorArgs(), src, dst),
		"exit",
	)

	return strings.Join(lines, "\n") + "\n"
}

// WriteScript materializes the script in dir and returns its path. The
// caller owns deletion on every path, including failed runs.
func WriteScript(j *Job, dir string) (string, error) {
	path := filepath.Join(dir, scriptName)
	if err := os.WriteFile(path, []byte(BuildScript(j)), 0o600); err != nil {
		return "", fmt.Errorf("writing lftp script: %w", err)
	}
	return path, nil
}
