package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/cb-sentinel/internal/models"
	"github.com/yourusername/cb-sentinel/internal/repository"
	"github.com/yourusername/cb-sentinel/internal/scanner"
	"github.com/yourusername/cb-sentinel/internal/signal"
)

var (
	scanIDs       []string
	scanTrailingK int
	scanJSON      bool
)

func init() {
	scanCmd.Flags().StringSliceVar(&scanIDs, "ids", nil, "CB ids to scan (default configured universe or full registry)")
	scanCmd.Flags().IntVarP(&scanTrailingK, "trailing-k", "k", 0, "Flag CBs with a signal in their last k points")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print the report as JSON")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the CB universe for recent volume breakouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newScanner()
		if err != nil {
			return err
		}
		report, err := runScan(cmd.Context(), s, scanIDs)
		if err != nil {
			return err
		}
		if scanJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printScanReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func newScanner() (*scanner.Scanner, error) {
	cfg := app.cfg
	params := signal.Params{Window: cfg.Detector.Window, Multiplier: cfg.Detector.MultiplierDecimal()}
	k := cfg.Scanner.TrailingK
	if scanTrailingK > 0 {
		k = scanTrailingK
	}

	var runs repository.ScanRunRepository
	if app.repos != nil {
		runs = app.repos.ScanRun
	}
	return scanner.NewScanner(app.series, app.universe, runs, scanner.Options{
		Params:       params,
		TrailingK:    k,
		Concurrency:  cfg.Scanner.Concurrency,
		LookbackDays: cfg.Scanner.LookbackDays,
	}, app.logger)
}

// runScan scans explicit ids, then the configured list, then the full registry
func runScan(ctx context.Context, s *scanner.Scanner, ids []string) (models.ScanReport, error) {
	if len(ids) == 0 {
		ids = app.cfg.Scanner.Universe
	}
	if len(ids) == 0 {
		return s.ScanUniverse(ctx)
	}
	return s.Scan(ctx, ids)
}

func printScanReport(w io.Writer, report models.ScanReport) {
	fmt.Fprintf(w, "Scanned %d CBs, %d skipped\n", report.SucceededCount, report.SkippedCount)
	if len(report.Hits) == 0 {
		fmt.Fprintln(w, "No recent volume breakouts")
	} else {
		fmt.Fprintf(w, "Recent breakouts: %s\n", strings.Join(report.Hits, ", "))
	}
	for _, skip := range report.Skipped {
		fmt.Fprintf(w, "  skipped %s (%s): %s\n", skip.InstrumentID, skip.Kind, skip.Reason)
	}
}
