package backtest

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/cb-sentinel/internal/models"
)

// Holding period bounds in trading days
const (
	MinHoldingDays     = 10
	MaxHoldingDays     = 120
	DefaultHoldingDays = 60
)

// ValidateHoldingDays checks the holding period is within bounds
func ValidateHoldingDays(holdingDays int) error {
	if holdingDays < MinHoldingDays || holdingDays > MaxHoldingDays {
		return models.NewInvalidInput("holding_days", "must be between 10 and 120")
	}
	return nil
}

// EvaluateBacktest buys at the close of every flagged point and sells at the
// close holdingDays observations later. Signals without that many following
// observations stay unresolved and are left out of the return statistics.
func EvaluateBacktest(signals models.SignalSeries, holdingDays int) (models.BacktestResult, error) {
	if err := ValidateHoldingDays(holdingDays); err != nil {
		return models.BacktestResult{}, err
	}

	result := models.BacktestResult{
		InstrumentID: signals.InstrumentID,
		HoldingDays:  holdingDays,
		Records:      make([]models.BacktestRecord, 0),
	}

	returns := make([]decimal.Decimal, 0)
	points := signals.Points
	for i, p := range points {
		if !p.Signal {
			continue
		}
		result.SignalCount++

		record := models.BacktestRecord{
			SignalDate:  p.Date,
			EntryPrice:  p.Close,
			HoldingDays: holdingDays,
		}
		if exit := i + holdingDays; exit < len(points) {
			exitDate := points[exit].Date
			exitPrice := points[exit].Close
			ret := exitPrice.Sub(p.Close).Div(p.Close)
			record.ExitDate = &exitDate
			record.ExitPrice = &exitPrice
			record.Return = &ret
			returns = append(returns, ret)
		}
		result.Records = append(result.Records, record)
	}

	applyReturnStats(&result, returns)
	return result, nil
}

func applyReturnStats(result *models.BacktestResult, returns []decimal.Decimal) {
	result.ResolvedCount = len(returns)
	if len(returns) == 0 {
		result.MeanReturn = decimal.Zero
		result.WinRate = decimal.Zero
		return
	}

	sum := decimal.Zero
	best, worst := returns[0], returns[0]
	for _, r := range returns {
		sum = sum.Add(r)
		if r.IsPositive() {
			result.WinningCount++
		} else if r.IsNegative() {
			result.LosingCount++
		}
		if r.GreaterThan(best) {
			best = r
		}
		if r.LessThan(worst) {
			worst = r
		}
	}

	n := decimal.NewFromInt(int64(len(returns)))
	result.MeanReturn = sum.Div(n)
	result.WinRate = decimal.NewFromInt(int64(result.WinningCount)).Div(n)
	result.BestReturn = best
	result.WorstReturn = worst
}
