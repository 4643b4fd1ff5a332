package main

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/nstoeckigt/lftp-mirror/internal/mirror"
)

// newCronCmd creates the scheduled mode. Without flags it performs one
// mirror run with the tuple from the configuration file, which is how a
// system crontab entry calls it. With --daemon it stays resident and
// drives the runs from the in-process scheduler instead.
func newCronCmd() *cobra.Command {
	var daemon bool

	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Run the mirror operation configured for scheduled execution",
		Long: `Run the mirror operation whose parameters are stored in the
configuration file. Intended to be invoked from a crontab entry; with
--daemon the process stays resident and schedules the runs itself using
the configured cron expression.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tuple := mirror.Tuple{
				Site:     globalCfg.Cron.Site,
				Port:     globalCfg.Cron.Port,
				Remote:   globalCfg.Cron.Remote,
				Local:    globalCfg.Cron.Local,
				User:     globalCfg.Cron.User,
				Password: globalCfg.Cron.Password,
				Options:  globalCfg.Cron.Options,
			}

			if !daemon {
				return runTuple(cmd.Context(), tuple)
			}

			expr := globalCfg.Schedule.Expression
			c := cron.New()
			_, err := c.AddFunc(expr, func() {
				if err := runTuple(context.Background(), tuple); err != nil {
					logger.Error("scheduled run failed", "error", err)
				}
			})
			if err != nil {
				return &mirror.ConfigError{Reason: "invalid schedule expression " + expr + ": " + err.Error()}
			}

			logger.Info("scheduler started", "expression", expr, "site", tuple.Site)
			c.Run()
			return nil
		},
	}

	cmd.Flags().BoolVar(&daemon, "daemon", false, "stay resident and schedule runs in-process")

	return cmd
}

// runTuple expands the configured tuple and executes it. Each invocation
// gets a fresh orchestrator so that log state never leaks between runs.
func runTuple(ctx context.Context, tuple mirror.Tuple) error {
	job, err := mirror.ExpandTuple(tuple)
	if err != nil {
		return err
	}

	orch := newOrchestrator()
	code, err := orch.RunJob(ctx, "cron", job)
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}
