package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyBond  string
	historyLimit int
)

func init() {
	historyCmd.Flags().StringVarP(&historyBond, "bond", "b", "", "Show backtest runs for this CB instead of scan runs")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List persisted scan or backtest runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.repos == nil {
			return fmt.Errorf("database is disabled; enable database in the config to keep run history")
		}
		out := cmd.OutOrStdout()

		if historyBond != "" {
			runs, err := app.repos.BacktestRun.GetByInstrument(cmd.Context(), historyBond, historyLimit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  x%s  hold %d  signals %d/%d  mean %s  win %s\n",
					r.RunDate.Format("2006-01-02 15:04"), r.ID, r.Multiplier.String(), r.HoldingDays,
					r.ResolvedCount, r.SignalCount, r.MeanReturn.StringFixed(4), r.WinRate.StringFixed(4))
			}
			return nil
		}

		runs, err := app.repos.ScanRun.GetRecent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s  %s  k=%d  scanned %d  skipped %d  hits %v\n",
				r.RunAt.Format("2006-01-02 15:04"), r.ID, r.TrailingK, r.SucceededCount, r.SkippedCount, r.Hits)
		}
		return nil
	},
}
