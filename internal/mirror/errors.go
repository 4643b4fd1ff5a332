package mirror

import "fmt"

// ConfigError reports malformed or contradictory arguments or configuration.
// It is fatal and raised before any mirror attempt.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config error: " + e.Reason }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// PrereqError reports a required external executable that could not be found.
type PrereqError struct {
	Program string
	Err     error
}

func (e *PrereqError) Error() string {
	return fmt.Sprintf("the %s program is necessary to run this tool", e.Program)
}

func (e *PrereqError) Unwrap() error { return e.Err }

// TransferError reports that the external transfer tool could not be
// invoked at all. A tool that runs and exits non-zero is not an error;
// that outcome is carried in the run's exit code.
type TransferError struct {
	Err error
}

func (e *TransferError) Error() string { return "transfer failed: " + e.Err.Error() }

func (e *TransferError) Unwrap() error { return e.Err }

// HousekeepingError reports an archive rotation or disk accounting failure.
// It aborts the remaining phases of the affected run.
type HousekeepingError struct {
	Op  string
	Err error
}

func (e *HousekeepingError) Error() string {
	return fmt.Sprintf("housekeeping failed during %s: %v", e.Op, e.Err)
}

func (e *HousekeepingError) Unwrap() error { return e.Err }

// RemoteIndexError reports a failed remote re-index trigger. The mirror
// itself has already completed and been logged when this is raised.
type RemoteIndexError struct {
	Err error
}

func (e *RemoteIndexError) Error() string { return "remote re-index failed: " + e.Err.Error() }

func (e *RemoteIndexError) Unwrap() error { return e.Err }
