// Package premium computes conversion value and premium of convertible bonds.
package premium

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/cb-sentinel/internal/models"
)

// parValue scales conversion value to the per-100 basis CB prices are quoted in
var parValue = decimal.NewFromInt(100)

// ConversionFigures is the outcome of one premium computation
type ConversionFigures struct {
	ConversionValue decimal.Decimal
	PremiumPct      decimal.Decimal
}

// ComputePremium returns
//
//	conversion_value = equity / conversion * 100
//	premium_pct      = (cb / conversion_value - 1) * 100
//
// All three inputs must be positive.
func ComputePremium(cbPrice, equityPrice, conversionPrice decimal.Decimal) (ConversionFigures, error) {
	if !conversionPrice.IsPositive() {
		return ConversionFigures{}, models.NewInvalidInput("conversion_price", "must be positive, got "+conversionPrice.String())
	}
	if !cbPrice.IsPositive() {
		return ConversionFigures{}, models.NewInvalidInput("cb_price", "must be positive, got "+cbPrice.String())
	}
	if !equityPrice.IsPositive() {
		return ConversionFigures{}, models.NewInvalidInput("equity_price", "must be positive, got "+equityPrice.String())
	}

	// Single division each so round numbers stay exact: 60*100/50 = 120
	conversionValue := equityPrice.Mul(parValue).Div(conversionPrice)
	// cb/cv*100 - 100 == cb*conversion/equity - 100
	premium := cbPrice.Mul(conversionPrice).Div(equityPrice).Sub(parValue)

	return ConversionFigures{ConversionValue: conversionValue, PremiumPct: premium}, nil
}

// PremiumInput pairs an instrument with its quotes. A nil quote is absent.
type PremiumInput struct {
	Instrument  models.CBInstrument
	CBPrice     *decimal.Decimal
	EquityPrice *decimal.Decimal
}

// Compute evaluates one input, reporting why it was skipped on failure
func Compute(in PremiumInput) (models.PremiumRecord, *models.SkippedInstrument) {
	inst := in.Instrument
	skip := func(reason string) *models.SkippedInstrument {
		return &models.SkippedInstrument{
			InstrumentID: inst.BondID,
			Kind:         models.FailureInvalidInput,
			Reason:       reason,
		}
	}

	switch {
	case !inst.ConversionPrice.IsPositive():
		return models.PremiumRecord{}, skip(models.ReasonInvalidConversionPrice)
	case in.CBPrice == nil:
		return models.PremiumRecord{}, skip(models.ReasonMissingCBQuote)
	case in.EquityPrice == nil:
		return models.PremiumRecord{}, skip(models.ReasonMissingEquityQuote)
	}

	figures, err := ComputePremium(*in.CBPrice, *in.EquityPrice, inst.ConversionPrice)
	if err != nil {
		return models.PremiumRecord{}, skip(err.Error())
	}

	return models.PremiumRecord{
		BondID:          inst.BondID,
		UnderlyingID:    inst.UnderlyingID,
		CBPrice:         *in.CBPrice,
		EquityPrice:     *in.EquityPrice,
		ConversionPrice: inst.ConversionPrice,
		ConversionValue: figures.ConversionValue,
		PremiumPct:      figures.PremiumPct,
	}, nil
}

// ComputeBatch evaluates every input. Failures are isolated per instrument and
// reported in Skipped. Records and skips are sorted by bond id.
func ComputeBatch(inputs []PremiumInput) models.PremiumBatch {
	batch := models.PremiumBatch{
		Records: make([]models.PremiumRecord, 0, len(inputs)),
		Skipped: make([]models.SkippedInstrument, 0),
	}
	for _, in := range inputs {
		record, skipped := Compute(in)
		if skipped != nil {
			batch.Skipped = append(batch.Skipped, *skipped)
			continue
		}
		batch.Records = append(batch.Records, record)
	}
	sortBatch(&batch)
	return batch
}

func sortBatch(batch *models.PremiumBatch) {
	sort.SliceStable(batch.Records, func(i, j int) bool {
		return batch.Records[i].BondID < batch.Records[j].BondID
	})
	sort.SliceStable(batch.Skipped, func(i, j int) bool {
		return batch.Skipped[i].InstrumentID < batch.Skipped[j].InstrumentID
	})
}
