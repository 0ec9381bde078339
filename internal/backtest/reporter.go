package backtest

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/cb-sentinel/internal/models"
)

const dateLayout = "2006-01-02"

// RecordsNewestFirst returns a copy of the records ordered by signal date, latest first
func RecordsNewestFirst(result models.BacktestResult) []models.BacktestRecord {
	records := make([]models.BacktestRecord, len(result.Records))
	copy(records, result.Records)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SignalDate.After(records[j].SignalDate)
	})
	return records
}

func percent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func optionalPercent(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return percent(*d)
}

func optionalPrice(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

// GenerateConsoleReport formats the result for terminal output
func GenerateConsoleReport(report *Report) string {
	r := report.Result
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Bond: %s\n", r.InstrumentID))
	builder.WriteString(fmt.Sprintf("Period: %s to %s\n", report.StartDate.Format(dateLayout), report.EndDate.Format(dateLayout)))
	builder.WriteString(fmt.Sprintf("Window: %d  Multiplier: %s  Holding: %d days\n",
		report.Flagged.Window, report.Flagged.Multiplier.String(), r.HoldingDays))
	builder.WriteString(fmt.Sprintf("Signals: %d (resolved %d, pending %d)\n", r.SignalCount, r.ResolvedCount, r.UnresolvedCount()))
	builder.WriteString(fmt.Sprintf("Mean Return: %s\n", percent(r.MeanReturn)))
	builder.WriteString(fmt.Sprintf("Win Rate: %s\n", percent(r.WinRate)))
	if r.HasOutcomes() {
		builder.WriteString(fmt.Sprintf("Best: %s  Worst: %s\n", percent(r.BestReturn), percent(r.WorstReturn)))
	}

	if len(r.Records) == 0 {
		builder.WriteString("\nNo signals in period\n")
		return builder.String()
	}

	builder.WriteString("\nSignal Date  Entry      Exit       Return\n")
	for _, rec := range RecordsNewestFirst(r) {
		builder.WriteString(fmt.Sprintf("%-12s %-10s %-10s %s\n",
			rec.SignalDate.Format(dateLayout),
			rec.EntryPrice.StringFixed(2),
			optionalPrice(rec.ExitPrice),
			optionalPercent(rec.Return),
		))
	}
	return builder.String()
}

// GenerateCSVExport writes one row per signal, newest first
func GenerateCSVExport(result models.BacktestResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create csv export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"signal_date", "entry_price", "exit_date", "exit_price", "holding_days", "return"}); err != nil {
		return err
	}
	for _, rec := range RecordsNewestFirst(result) {
		row := []string{rec.SignalDate.Format(dateLayout), rec.EntryPrice.String(), "", "", fmt.Sprintf("%d", rec.HoldingDays), ""}
		if rec.IsResolved() {
			row[2] = rec.ExitDate.Format(dateLayout)
			row[3] = rec.ExitPrice.String()
			row[5] = rec.Return.String()
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><title>Backtest Report {{.Bond}}</title></head>
<body>
<h1>Backtest Report {{.Bond}}</h1>
<p><strong>Period:</strong> {{.Start}} to {{.End}}</p>
<p><strong>Signals:</strong> {{.Signals}} ({{.Resolved}} resolved)</p>
<p><strong>Mean Return:</strong> {{.MeanReturn}}</p>
<p><strong>Win Rate:</strong> {{.WinRate}}</p>
<table>
<tr><th>Signal Date</th><th>Entry</th><th>Exit</th><th>Return</th></tr>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Entry}}</td><td>{{.Exit}}</td><td>{{.Return}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type htmlRow struct {
	Date, Entry, Exit, Return string
}

// GenerateHTMLReport creates a simple HTML report
func GenerateHTMLReport(report *Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	r := report.Result
	data := struct {
		Bond, Start, End    string
		Signals, Resolved   int
		MeanReturn, WinRate string
		Rows                []htmlRow
	}{
		Bond:       r.InstrumentID,
		Start:      report.StartDate.Format(dateLayout),
		End:        report.EndDate.Format(dateLayout),
		Signals:    r.SignalCount,
		Resolved:   r.ResolvedCount,
		MeanReturn: percent(r.MeanReturn),
		WinRate:    percent(r.WinRate),
	}
	for _, rec := range RecordsNewestFirst(r) {
		data.Rows = append(data.Rows, htmlRow{
			Date:   rec.SignalDate.Format(dateLayout),
			Entry:  rec.EntryPrice.StringFixed(2),
			Exit:   optionalPrice(rec.ExitPrice),
			Return: optionalPercent(rec.Return),
		})
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create html report: %w", err)
	}
	defer f.Close()
	return htmlReport.Execute(f, data)
}

// WriteReports writes the CSV and HTML reports into dir and returns their paths
func WriteReports(report *Report, dir string) ([]string, error) {
	base := filepath.Join(dir, report.Result.InstrumentID+"_backtest")
	csvPath, htmlPath := base+".csv", base+".html"
	if err := GenerateCSVExport(report.Result, csvPath); err != nil {
		return nil, err
	}
	if err := GenerateHTMLReport(report, htmlPath); err != nil {
		return nil, err
	}
	return []string{csvPath, htmlPath}, nil
}
