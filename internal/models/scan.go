package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrFetchFailed marks transient upstream failures. Data source errors match it
// through errors.Is.
var ErrFetchFailed = errors.New("fetch failed")

// FailureKind classifies why an instrument was left out of a batch
type FailureKind string

const (
	FailureNoData       FailureKind = "no_data"
	FailureInvalidInput FailureKind = "invalid_input"
	FailureFetch        FailureKind = "fetch_failure"
)

// Classify maps an error onto the failure kinds shown to users
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrEmptySeries), errors.Is(err, ErrNotFound):
		return FailureNoData
	case errors.Is(err, ErrFetchFailed):
		return FailureFetch
	default:
		return FailureInvalidInput
	}
}

// SkippedInstrument records an instrument a batch operation could not process
type SkippedInstrument struct {
	InstrumentID string      `json:"instrument_id"`
	Kind         FailureKind `json:"kind"`
	Reason       string      `json:"reason"`
}

// InstrumentScan is the per-instrument outcome of a universe scan
type InstrumentScan struct {
	InstrumentID   string     `json:"instrument_id"`
	LastDate       time.Time  `json:"last_date"`
	Points         int        `json:"points"`
	SignalCount    int        `json:"signal_count"`
	Hit            bool       `json:"hit"`
	LastSignalDate *time.Time `json:"last_signal_date,omitempty"`
}

// ScanReport summarises a universe scan
type ScanReport struct {
	Hits           []string            `json:"hits"`
	Results        []InstrumentScan    `json:"results"`
	Skipped        []SkippedInstrument `json:"skipped"`
	SucceededCount int                 `json:"succeeded_count"`
	SkippedCount   int                 `json:"skipped_count"`
}

// ScanRun is a persisted universe scan
type ScanRun struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RunAt          time.Time `db:"run_at" json:"run_at"`
	TrailingK      int       `db:"trailing_k" json:"trailing_k"`
	Hits           []string  `db:"hits" json:"hits"`
	SucceededCount int       `db:"succeeded_count" json:"succeeded_count"`
	SkippedCount   int       `db:"skipped_count" json:"skipped_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
