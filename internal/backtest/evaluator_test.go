package backtest

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/cb-sentinel/internal/models"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// flagged builds a series of closes with signals at the given indices
func flagged(closes []string, signalAt ...int) models.SignalSeries {
	points := make([]models.FlaggedPoint, len(closes))
	for i, c := range closes {
		points[i] = models.FlaggedPoint{PricePoint: models.PricePoint{
			Date:   day0.AddDate(0, 0, i),
			Close:  decimal.RequireFromString(c),
			Volume: 10,
		}}
	}
	for _, i := range signalAt {
		points[i].Signal = true
	}
	return models.SignalSeries{InstrumentID: "15821", Window: 20, Multiplier: decimal.NewFromFloat(2.5), Points: points}
}

func constant(n int, c string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestEvaluateBacktestExactReturn(t *testing.T) {
	closes := constant(15, "100")
	closes[10] = "110"

	result, err := EvaluateBacktest(flagged(closes, 0), 10)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	require.True(t, rec.IsResolved())
	assert.True(t, rec.Return.Equal(decimal.RequireFromString("0.1")), "got %s", rec.Return)
	assert.Equal(t, day0.AddDate(0, 0, 10), *rec.ExitDate)
	assert.Equal(t, 1, result.ResolvedCount)
	assert.True(t, result.MeanReturn.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, result.WinRate.Equal(decimal.NewFromInt(1)))
}

func TestEvaluateBacktestExcludesUnresolved(t *testing.T) {
	closes := constant(20, "100")
	closes[10] = "90"

	result, err := EvaluateBacktest(flagged(closes, 0, 15), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SignalCount)
	assert.Equal(t, 1, result.ResolvedCount)
	assert.Equal(t, 1, result.UnresolvedCount())
	assert.False(t, result.Records[1].IsResolved())
	assert.Nil(t, result.Records[1].ExitPrice)
	assert.True(t, result.MeanReturn.Equal(decimal.RequireFromString("-0.1")))
	assert.True(t, result.WinRate.IsZero())
	assert.Equal(t, 1, result.LosingCount)
}

func TestEvaluateBacktestZeroGuard(t *testing.T) {
	tests := []struct {
		name    string
		signals models.SignalSeries
	}{
		{"no signals", flagged(constant(30, "100"))},
		{"only unresolved", flagged(constant(12, "100"), 5)},
		{"empty series", models.SignalSeries{InstrumentID: "15821"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EvaluateBacktest(tt.signals, 10)
			require.NoError(t, err)
			assert.True(t, result.MeanReturn.IsZero())
			assert.True(t, result.WinRate.IsZero())
			assert.False(t, result.HasOutcomes())
		})
	}
}

func TestEvaluateBacktestBestWorst(t *testing.T) {
	closes := constant(25, "100")
	closes[10] = "120"
	closes[12] = "95"

	result, err := EvaluateBacktest(flagged(closes, 0, 2), 10)
	require.NoError(t, err)
	assert.True(t, result.BestReturn.Equal(decimal.RequireFromString("0.2")))
	assert.True(t, result.WorstReturn.Equal(decimal.RequireFromString("-0.05")))
	assert.True(t, result.WinRate.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, result.MeanReturn.Equal(decimal.RequireFromString("0.075")))
}

func TestValidateHoldingDays(t *testing.T) {
	tests := []struct {
		days    int
		wantErr bool
	}{
		{9, true},
		{10, false},
		{60, false},
		{120, false},
		{121, true},
	}
	for _, tt := range tests {
		err := ValidateHoldingDays(tt.days)
		if tt.wantErr {
			assert.True(t, errors.Is(err, models.ErrInvalidInput), "days=%d", tt.days)
		} else {
			assert.NoError(t, err, "days=%d", tt.days)
		}
	}

	_, err := EvaluateBacktest(flagged(constant(5, "1")), 5)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}
