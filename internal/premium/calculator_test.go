package premium

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/cb-sentinel/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func TestComputePremiumRoundTrip(t *testing.T) {
	figures, err := ComputePremium(d("120"), d("60"), d("50"))
	require.NoError(t, err)
	assert.True(t, figures.ConversionValue.Equal(d("120")), figures.ConversionValue.String())
	assert.True(t, figures.PremiumPct.IsZero(), figures.PremiumPct.String())
}

func TestComputePremiumValues(t *testing.T) {
	tests := []struct {
		name       string
		cb, eq, cp string
		wantValue  string
		wantPct    string
	}{
		{"premium", "150", "60", "50", "120", "25"},
		{"discount", "96", "60", "50", "120", "-20"},
		{"fractional conversion price", "105", "42", "35", "120", "-12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			figures, err := ComputePremium(d(tt.cb), d(tt.eq), d(tt.cp))
			require.NoError(t, err)
			assert.True(t, figures.ConversionValue.Equal(d(tt.wantValue)), figures.ConversionValue.String())
			assert.True(t, figures.PremiumPct.Equal(d(tt.wantPct)), figures.PremiumPct.String())
		})
	}
}

func TestComputePremiumInvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		cb, eq, cp string
		wantField  string
	}{
		{"zero conversion price", "100", "50", "0", "conversion_price"},
		{"negative conversion price", "100", "50", "-1", "conversion_price"},
		{"zero cb price", "0", "50", "40", "cb_price"},
		{"negative equity price", "100", "-5", "40", "equity_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			figures, err := ComputePremium(d(tt.cb), d(tt.eq), d(tt.cp))
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidInput))

			var invalid *models.InvalidInputError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.wantField, invalid.Field)
			assert.Equal(t, ConversionFigures{}, figures)
		})
	}
}

func TestComputeBatchIsolatesFailures(t *testing.T) {
	inst := func(id, conv string) models.CBInstrument {
		return models.CBInstrument{BondID: id, UnderlyingID: id[:4], ConversionPrice: d(conv)}
	}
	inputs := []PremiumInput{
		{Instrument: inst("30001", "50"), CBPrice: dp("150"), EquityPrice: dp("60")},
		{Instrument: inst("20002", "50"), CBPrice: nil, EquityPrice: dp("60")},
		{Instrument: inst("10003", "50"), CBPrice: dp("120"), EquityPrice: dp("60")},
		{Instrument: inst("40004", "50"), CBPrice: dp("120"), EquityPrice: nil},
		{Instrument: inst("50005", "0"), CBPrice: dp("120"), EquityPrice: dp("60")},
		{Instrument: inst("60006", "50"), CBPrice: dp("0"), EquityPrice: dp("60")},
	}

	batch := ComputeBatch(inputs)

	require.Len(t, batch.Records, 2)
	assert.Equal(t, "10003", batch.Records[0].BondID)
	assert.True(t, batch.Records[0].PremiumPct.IsZero())
	assert.Equal(t, "30001", batch.Records[1].BondID)
	assert.True(t, batch.Records[1].PremiumPct.Equal(d("25")))
	assert.Equal(t, "3000", batch.Records[1].UnderlyingID)

	require.Len(t, batch.Skipped, 4)
	reasons := map[string]string{}
	for _, s := range batch.Skipped {
		assert.Equal(t, models.FailureInvalidInput, s.Kind)
		reasons[s.InstrumentID] = s.Reason
	}
	assert.Equal(t, models.ReasonMissingCBQuote, reasons["20002"])
	assert.Equal(t, models.ReasonMissingEquityQuote, reasons["40004"])
	assert.Equal(t, models.ReasonInvalidConversionPrice, reasons["50005"])
	assert.Contains(t, reasons["60006"], "cb_price")
	assert.Equal(t, "20002", batch.Skipped[0].InstrumentID)
}

func TestComputeBatchEmpty(t *testing.T) {
	batch := ComputeBatch(nil)
	assert.Empty(t, batch.Records)
	assert.Empty(t, batch.Skipped)
}
