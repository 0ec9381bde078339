// Package signal flags abnormal trading volume against a trailing average.
package signal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/cb-sentinel/internal/models"
)

// DefaultWindow is the rolling volume lookback in trading days
const DefaultWindow = 20

// Domain range of the breakout multiplier
var (
	MinMultiplier     = decimal.NewFromFloat(1.5)
	MaxMultiplier     = decimal.NewFromInt(5)
	DefaultMultiplier = decimal.NewFromFloat(2.5)
)

// Params configures the detector
type Params struct {
	Window     int
	Multiplier decimal.Decimal
}

// DefaultParams returns a 20-day window with a 2.5x multiplier
func DefaultParams() Params {
	return Params{Window: DefaultWindow, Multiplier: DefaultMultiplier}
}

// Validate checks window and multiplier bounds
func (p Params) Validate() error {
	if p.Window != DefaultWindow {
		return models.NewInvalidInput("window", fmt.Sprintf("must be %d, got %d", DefaultWindow, p.Window))
	}
	if p.Multiplier.LessThan(MinMultiplier) || p.Multiplier.GreaterThan(MaxMultiplier) {
		return models.NewInvalidInput("multiplier", "must be between 1.5 and 5.0, got "+p.Multiplier.String())
	}
	return nil
}

// DetectSignals flags every point whose volume is strictly greater than
// multiplier times the simple mean of the last Window volumes, current point
// included. Points without a full window are never flagged.
func DetectSignals(series models.InstrumentSeries, params Params) (models.SignalSeries, error) {
	if params.Window == 0 {
		params.Window = DefaultWindow
	}
	if err := params.Validate(); err != nil {
		return models.SignalSeries{}, err
	}

	out := models.SignalSeries{
		InstrumentID: series.InstrumentID,
		Window:       params.Window,
		Multiplier:   params.Multiplier,
		Points:       make([]models.FlaggedPoint, len(series.Points)),
	}

	window := decimal.NewFromInt(int64(params.Window))
	// decimal sum so twenty int64 volumes cannot overflow
	sum := decimal.Zero
	for i, p := range series.Points {
		sum = sum.Add(decimal.NewFromInt(p.Volume))
		if i >= params.Window {
			sum = sum.Sub(decimal.NewFromInt(series.Points[i-params.Window].Volume))
		}

		fp := models.FlaggedPoint{PricePoint: p}
		if i >= params.Window-1 {
			fp.HasMean = true
			fp.RollingMean = sum.Div(window)
			// volume > m * sum/window  <=>  volume*window > m*sum, kept exact
			fp.Signal = decimal.NewFromInt(p.Volume).Mul(window).GreaterThan(params.Multiplier.Mul(sum))
		}
		out.Points[i] = fp
	}

	return out, nil
}

// RecentHit reports whether any of the last k points carries a signal and
// returns the most recent such point
func RecentHit(s models.SignalSeries, k int) (models.FlaggedPoint, bool) {
	if k <= 0 {
		return models.FlaggedPoint{}, false
	}
	start := len(s.Points) - k
	if start < 0 {
		start = 0
	}
	for i := len(s.Points) - 1; i >= start; i-- {
		if s.Points[i].Signal {
			return s.Points[i], true
		}
	}
	return models.FlaggedPoint{}, false
}
