package models

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is
var (
	ErrMissingField = errors.New("required field missing")
	ErrEmptySeries  = errors.New("no usable rows in series")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("record not found")
)

// Reasons reported for instruments left out of a premium batch
const (
	ReasonMissingCBQuote         = "missing CB quote"
	ReasonMissingEquityQuote     = "missing equity quote"
	ReasonInvalidConversionPrice = "invalid conversion price"
)

// MissingFieldError reports a field that no alias could resolve in the input rows
type MissingFieldError struct {
	InstrumentID string
	Field        string
}

func (e *MissingFieldError) Error() string {
	if e.InstrumentID == "" {
		return fmt.Sprintf("missing field %q", e.Field)
	}
	return fmt.Sprintf("%s: missing field %q", e.InstrumentID, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// EmptySeriesError reports that normalization left no valid rows.
// Callers treat it as "no data available".
type EmptySeriesError struct {
	InstrumentID string
}

func (e *EmptySeriesError) Error() string {
	if e.InstrumentID == "" {
		return "empty series"
	}
	return fmt.Sprintf("%s: empty series", e.InstrumentID)
}

func (e *EmptySeriesError) Unwrap() error { return ErrEmptySeries }

// InvalidInputError reports a non-positive, missing or out-of-range input
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// NewInvalidInput builds an InvalidInputError
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
