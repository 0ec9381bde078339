package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/cb-sentinel/internal/models"
)

// SeriesSource fetches raw daily rows for one instrument
type SeriesSource interface {
	// FetchDailySeries retrieves rows dated on or after start
	FetchDailySeries(ctx context.Context, instrumentID string, start time.Time) ([]models.RawRecord, error)
}

// UniverseSource lists the convertible bonds known to the provider
type UniverseSource interface {
	FetchUniverse(ctx context.Context) ([]models.CBInstrument, error)
}

// QuoteSource returns the latest close for a ticker.
// A nil price with a nil error means no quote is available.
type QuoteSource interface {
	FetchQuote(ctx context.Context, ticker string) (*decimal.Decimal, error)
}

// QuoteFunc adapts a function to QuoteSource
type QuoteFunc func(ctx context.Context, ticker string) (*decimal.Decimal, error)

// FetchQuote calls f
func (f QuoteFunc) FetchQuote(ctx context.Context, ticker string) (*decimal.Decimal, error) {
	return f(ctx, ticker)
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error { return e.Err }

// Is lets callers classify upstream failures with the model sentinels.
// Not-found responses mean "no data"; every other code is a fetch failure.
func (e DataSourceError) Is(target error) bool {
	switch target {
	case models.ErrNotFound:
		return e.Code == ErrCodeNotFound
	case models.ErrFetchFailed:
		return e.Code != ErrCodeNotFound
	}
	return false
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Underlying causes attached to DataSourceError
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidData          = errors.New("invalid data format")
	ErrServerError          = errors.New("server error")
	ErrCircuitOpen          = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
