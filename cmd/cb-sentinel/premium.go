package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yourusername/cb-sentinel/internal/models"
	"github.com/yourusername/cb-sentinel/internal/premium"
)

var premiumJSON bool

func init() {
	premiumCmd.Flags().BoolVar(&premiumJSON, "json", false, "Print the batch as JSON")
}

var premiumCmd = &cobra.Command{
	Use:   "premium",
	Short: "Compute the conversion premium across the CB universe",
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := newPremiumService().ScanUniverse(cmd.Context())
		if err != nil {
			return err
		}
		if premiumJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(batch)
		}
		printPremiumBatch(cmd.OutOrStdout(), batch)
		return nil
	},
}

func newPremiumService() *premium.Service {
	return premium.NewService(app.universe, app.bondQuotes, app.equities, app.cfg.Scanner.Concurrency, app.logger)
}

func printPremiumBatch(w io.Writer, batch models.PremiumBatch) {
	fmt.Fprintf(w, "%-8s %-8s %10s %10s %10s %10s %9s\n", "CB", "Stock", "CB Price", "Equity", "Conv.", "Conv.Val", "Premium")
	for _, r := range batch.Records {
		fmt.Fprintf(w, "%-8s %-8s %10s %10s %10s %10s %8s%%\n",
			r.BondID, r.UnderlyingID,
			r.CBPrice.StringFixed(2), r.EquityPrice.StringFixed(2), r.ConversionPrice.StringFixed(2),
			r.ConversionValue.StringFixed(2), r.PremiumPct.StringFixed(2),
		)
	}
	if len(batch.Skipped) > 0 {
		fmt.Fprintf(w, "\n%d CBs skipped\n", len(batch.Skipped))
		for _, skip := range batch.Skipped {
			fmt.Fprintf(w, "  %s (%s): %s\n", skip.InstrumentID, skip.Kind, skip.Reason)
		}
	}
}
