package mirror

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// TransferRunner executes the external transfer tool against a generated
// command script.
type TransferRunner interface {
	Run(ctx context.Context, scriptPath string, quiet bool) (lines []string, exitCode int, err error)
}

// Runner drives the lftp binary. No timeout is imposed on the child
// process; lftp owns its own retry and timeout semantics.
type Runner struct {
	LftpPath string
	Logger   *slog.Logger
}

// NewRunner creates a Runner for the resolved lftp executable.
func NewRunner(lftpPath string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{LftpPath: lftpPath, Logger: logger}
}

// Run invokes lftp with the script. In quiet mode the diagnostic stream is
// folded into the captured output so only the log retains the details;
// otherwise it passes through to the terminal. A non-zero exit status is
// returned in exitCode and is not an error: the orchestrator records it as
// the run's result.
func (r *Runner) Run(ctx context.Context, scriptPath string, quiet bool) ([]string, int, error) {
	cmd := exec.CommandContext(ctx, r.LftpPath, "-d", "-f", scriptPath)

	var out bytes.Buffer
	cmd.Stdout = &out
	if quiet {
		cmd.Stderr = &out
	} else {
		cmd.Stderr = os.Stderr
	}

	r.Logger.Debug("running transfer tool", "cmd", r.LftpPath, "script", scriptPath, "quiet", quiet)

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			return splitLines(out.String()), -1, &TransferError{Err: err}
		}
	}

	r.Logger.Debug("transfer tool finished", "exit_code", code)
	return splitLines(out.String()), code, nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
