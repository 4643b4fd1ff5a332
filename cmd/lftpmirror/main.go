package main

import (
	"errors"
	"os"

	"github.com/nstoeckigt/lftp-mirror/internal/mirror"
)

func main() {
	os.Exit(run())
}

// run maps the command outcome onto the process exit status: the transfer
// tool's own code when a run got that far, distinct codes for
// configuration and prerequisite failures otherwise.
func run() int {
	err := NewRootCmd().Execute()
	if err == nil {
		return 0
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var cfgErr *mirror.ConfigError
	if errors.As(err, &cfgErr) {
		return 2
	}
	var preErr *mirror.PrereqError
	if errors.As(err, &preErr) {
		return 3
	}
	return 1
}
