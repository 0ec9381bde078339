package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"empty series", &EmptySeriesError{InstrumentID: "15821"}, FailureNoData},
		{"not found", fmt.Errorf("lookup: %w", ErrNotFound), FailureNoData},
		{"fetch", fmt.Errorf("upstream: %w", ErrFetchFailed), FailureFetch},
		{"missing field", &MissingFieldError{Field: "volume"}, FailureInvalidInput},
		{"invalid input", NewInvalidInput("holding_days", "too long"), FailureInvalidInput},
		{"other", errors.New("boom"), FailureInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `15821: missing field "close"`, (&MissingFieldError{InstrumentID: "15821", Field: "close"}).Error())
	assert.Equal(t, `missing field "close"`, (&MissingFieldError{Field: "close"}).Error())
	assert.Equal(t, "empty series", (&EmptySeriesError{}).Error())
	assert.True(t, errors.Is(&MissingFieldError{Field: "date"}, ErrMissingField))
}
