package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/ini.v1"

	"github.com/nstoeckigt/lftp-mirror/internal/mirror"
)

// newCfgCmd creates the batch mode: import mirror operations from a
// sectioned configuration file and run them in order.
func newCfgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cfg file",
		Short: "Run every mirror operation defined in a sectioned config file",
		Long: `Run all mirror operations defined in a configuration file, one section
per operation, in file order. Each section carries the keys site, port,
remote, local, user, password (base64) and options. A malformed section
is reported and skipped; the remaining sections still run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ini.Load(args[0])
			if err != nil {
				return &mirror.ConfigError{Reason: "cannot read config file " + args[0] + ": " + err.Error()}
			}

			var sections []mirror.BatchSection
			for _, sec := range f.Sections() {
				if sec.Name() == ini.DefaultSection {
					continue
				}
				sections = append(sections, mirror.BatchSection{
					Name: sec.Name(),
					Tuple: mirror.Tuple{
						Site:     sec.Key("site").String(),
						Port:     sec.Key("port").String(),
						Remote:   sec.Key("remote").String(),
						Local:    sec.Key("local").String(),
						User:     sec.Key("user").String(),
						Password: sec.Key("password").String(),
						Options:  sec.Key("options").String(),
					},
				})
			}
			if len(sections) == 0 {
				return &mirror.ConfigError{Reason: "no mirror sections found in " + args[0]}
			}

			orch := newOrchestrator()
			code, err := orch.RunBatch(cmd.Context(), sections)
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
