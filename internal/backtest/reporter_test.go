package backtest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	closes := constant(25, "100")
	closes[10] = "110"
	signals := flagged(closes, 0, 20)
	result, err := EvaluateBacktest(signals, 10)
	require.NoError(t, err)
	return &Report{
		Flagged:   signals,
		Result:    result,
		StartDate: day0,
		EndDate:   day0.AddDate(0, 0, 24),
	}
}

func TestRecordsNewestFirst(t *testing.T) {
	report := sampleReport(t)
	records := RecordsNewestFirst(report.Result)
	require.Len(t, records, 2)
	assert.True(t, records[0].SignalDate.After(records[1].SignalDate))
	// input left untouched
	assert.Equal(t, day0, report.Result.Records[0].SignalDate)
}

func TestGenerateConsoleReport(t *testing.T) {
	out := GenerateConsoleReport(sampleReport(t))
	assert.Contains(t, out, "Bond: 15821")
	assert.Contains(t, out, "Signals: 2 (resolved 1, pending 1)")
	assert.Contains(t, out, "Mean Return: 10.00%")
	assert.Contains(t, out, "Win Rate: 100.00%")
	assert.Less(t, strings.Index(out, "2024-01-21"), strings.LastIndex(out, "2024-01-01"))
}

func TestGenerateConsoleReportNoSignals(t *testing.T) {
	signals := flagged(constant(25, "100"))
	result, err := EvaluateBacktest(signals, 10)
	require.NoError(t, err)

	out := GenerateConsoleReport(&Report{Flagged: signals, Result: result, StartDate: day0, EndDate: day0})
	assert.Contains(t, out, "No signals in period")
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteReports(sampleReport(t), filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, paths, 2)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "signal_date", rows[0][0])
	assert.Equal(t, "2024-01-21", rows[1][0])
	assert.Equal(t, "", rows[1][5])
	assert.Equal(t, "0.1", rows[2][5])

	html, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(html), "Backtest Report 15821")
	assert.Contains(t, string(html), "10.00%")
}
