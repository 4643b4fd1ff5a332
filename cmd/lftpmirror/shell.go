package main

import (
	"github.com/spf13/cobra"

	"github.com/nstoeckigt/lftp-mirror/internal/mirror"
)

// newShellCmd creates the interactive command-line mode. Flag parsing is
// disabled on the cobra side so the raw tokens reach the shared mirror
// grammar untouched.
func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell site remote local [options]",
		Short: "Run one mirror operation with parameters from the command line",
		Long: `Run one mirror operation interactively. The three positional arguments
are the FTP/SFTP host, the remote directory and the local directory;
everything else is given through options.

` + mirror.Usage(),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				if a == "-h" || a == "--help" {
					return cmd.Help()
				}
			}

			job, err := mirror.ParseArgs(args)
			if err != nil {
				return err
			}

			orch := newOrchestrator()
			code, err := orch.RunJob(cmd.Context(), "shell", job)
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}
}
