package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one daily row as delivered by an upstream feed, keyed by the
// provider's own column names
type RawRecord map[string]any

// PricePoint is a single normalized daily observation
type PricePoint struct {
	Date   time.Time       `json:"date"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// InstrumentSeries holds the daily points of one instrument, ascending by
// date with at most one point per date
type InstrumentSeries struct {
	InstrumentID string       `json:"instrument_id"`
	Points       []PricePoint `json:"points"`
}

// Len returns the number of points
func (s InstrumentSeries) Len() int {
	return len(s.Points)
}

// IsEmpty reports whether the series carries no points
func (s InstrumentSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// Last returns the most recent point
func (s InstrumentSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}
