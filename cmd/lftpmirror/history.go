package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nstoeckigt/lftp-mirror/internal/diskuse"
)

// newHistoryCmd creates the run history listing command
func newHistoryCmd() *cobra.Command {
	var (
		limit int
		site  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past mirror runs from the local run database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if globalStore == nil {
				return fmt.Errorf("run history store is not available")
			}

			runs, err := globalStore.ListMirrorRuns(site, limit)
			if err != nil {
				return fmt.Errorf("listing runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Println("No mirror runs recorded yet.")
				return nil
			}

			fmt.Printf("%-20s %-24s %-10s %-6s %-10s %-14s %s\n",
				"START", "SITE", "MODE", "EXIT", "FILES", "SIZE", "STATUS")
			for _, r := range runs {
				size := diskuse.BestUnit(r.BytesTotal)
				fmt.Printf("%-20s %-24s %-10s %-6d %-10d %8.2f %-5s %s\n",
					r.StartTime.Format("2006-01-02 15:04:05"),
					r.Site, r.Mode, r.ExitCode, r.FileCount,
					size.Value, size.Unit, r.Status)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	cmd.Flags().StringVar(&site, "site", "", "only show runs for this site")

	return cmd
}
