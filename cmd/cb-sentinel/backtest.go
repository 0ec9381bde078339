package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yourusername/cb-sentinel/internal/backtest"
	"github.com/yourusername/cb-sentinel/internal/repository"
)

var (
	btBond       string
	btStart      string
	btMultiplier float64
	btHolding    int
	btOutput     string
)

func init() {
	backtestCmd.Flags().StringVarP(&btBond, "bond", "b", "", "CB id to evaluate (default from config)")
	backtestCmd.Flags().StringVar(&btStart, "start", "", "Start date YYYY-MM-DD (default now minus lookback)")
	backtestCmd.Flags().Float64VarP(&btMultiplier, "multiplier", "m", 0, "Volume multiplier between 1.5 and 5.0")
	backtestCmd.Flags().IntVar(&btHolding, "holding", 0, "Holding period in trading days between 10 and 120")
	backtestCmd.Flags().StringVarP(&btOutput, "output", "o", "", "Directory for CSV and HTML reports")
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Evaluate forward returns of volume breakouts for one CB",
	RunE: func(cmd *cobra.Command, args []string) error {
		btConfig, err := backtest.FromConfig(&app.cfg.Backtest, &app.cfg.Detector, time.Now())
		if err != nil {
			return fmt.Errorf("invalid backtest config: %w", err)
		}
		if err := applyBacktestFlags(&btConfig); err != nil {
			return err
		}

		var runs repository.BacktestRunRepository
		if app.repos != nil {
			runs = app.repos.BacktestRun
		}
		engine, err := backtest.NewEngine(app.series, runs, app.logger)
		if err != nil {
			return err
		}

		report, err := engine.Run(cmd.Context(), btConfig)
		if err != nil {
			return fmt.Errorf("backtest failed: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), backtest.GenerateConsoleReport(report))

		if btConfig.OutputPath != "" {
			paths, err := backtest.WriteReports(report, btConfig.OutputPath)
			if err != nil {
				return fmt.Errorf("failed to write reports: %w", err)
			}
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
			}
		}
		return nil
	},
}

func applyBacktestFlags(bt *backtest.BacktestConfig) error {
	if btBond != "" {
		bt.BondID = btBond
	}
	if btStart != "" {
		start, err := time.Parse("2006-01-02", btStart)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		bt.StartDate = start
	}
	if btMultiplier != 0 {
		bt.Params.Multiplier = decimal.NewFromFloat(btMultiplier)
	}
	if btHolding != 0 {
		bt.HoldingDays = btHolding
	}
	if btOutput != "" {
		bt.OutputPath = btOutput
	}
	return bt.Validate()
}
