package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlaggedPoint is a price point annotated by the volume detector
type FlaggedPoint struct {
	PricePoint
	// RollingMean is only meaningful when HasMean is true
	RollingMean decimal.Decimal `json:"rolling_volume_mean"`
	HasMean     bool            `json:"has_mean"`
	Signal      bool            `json:"signal"`
}

// SignalSeries is an InstrumentSeries with one flag per point
type SignalSeries struct {
	InstrumentID string          `json:"instrument_id"`
	Window       int             `json:"window"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	Points       []FlaggedPoint  `json:"points"`
}

// Signal describes a single volume breakout
type Signal struct {
	Date              time.Time       `json:"date"`
	Close             decimal.Decimal `json:"close"`
	Volume            int64           `json:"volume"`
	RollingVolumeMean decimal.Decimal `json:"rolling_volume_mean"`
	MultiplierUsed    decimal.Decimal `json:"multiplier_used"`
}

// Signals returns the flagged points as Signal values in date order
func (s SignalSeries) Signals() []Signal {
	out := make([]Signal, 0)
	for _, p := range s.Points {
		if !p.Signal {
			continue
		}
		out = append(out, Signal{
			Date:              p.Date,
			Close:             p.Close,
			Volume:            p.Volume,
			RollingVolumeMean: p.RollingMean,
			MultiplierUsed:    s.Multiplier,
		})
	}
	return out
}

// SignalCount counts flagged points
func (s SignalSeries) SignalCount() int {
	n := 0
	for _, p := range s.Points {
		if p.Signal {
			n++
		}
	}
	return n
}

// Series strips the flags and returns the underlying series
func (s SignalSeries) Series() InstrumentSeries {
	points := make([]PricePoint, len(s.Points))
	for i, p := range s.Points {
		points[i] = p.PricePoint
	}
	return InstrumentSeries{InstrumentID: s.InstrumentID, Points: points}
}
