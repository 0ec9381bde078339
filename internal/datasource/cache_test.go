package datasource

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/cb-sentinel/internal/models"
)

type countingSource struct {
	mu     sync.Mutex
	calls  int
	err    error
	quotes map[string]*decimal.Decimal
}

func (s *countingSource) inc() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
}

func (s *countingSource) FetchDailySeries(ctx context.Context, id string, start time.Time) ([]models.RawRecord, error) {
	s.inc()
	if s.err != nil {
		return nil, s.err
	}
	return []models.RawRecord{{"date": "2024-01-02", "close": 100, "volume": 10}}, nil
}

func (s *countingSource) FetchUniverse(ctx context.Context) ([]models.CBInstrument, error) {
	s.inc()
	return []models.CBInstrument{{BondID: "15821", UnderlyingID: "1582"}}, nil
}

func (s *countingSource) FetchQuote(ctx context.Context, ticker string) (*decimal.Decimal, error) {
	s.inc()
	return s.quotes[ticker], nil
}

func TestCachedSourceSeriesHit(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, inner, inner, time.Minute, nil)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := cached.FetchDailySeries(ctx, "15821", start)
	require.NoError(t, err)
	second, err := cached.FetchDailySeries(ctx, "15821", start)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	_, err = cached.FetchDailySeries(ctx, "15821", start.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	hits, misses, ratio := cached.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)
	assert.InDelta(t, 1.0/3.0, ratio, 1e-9)
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	inner := &countingSource{err: NewDataSourceError("finmind", ErrCodeServerError, "down", ErrServerError)}
	cached := NewCachedSource(inner, nil, nil, time.Minute, nil)
	ctx := context.Background()

	_, err := cached.FetchDailySeries(ctx, "15821", time.Time{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFetchFailed))

	inner.err = nil
	_, err = cached.FetchDailySeries(ctx, "15821", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 1, cached.ItemCount())
}

func TestCachedSourceUniverseAndQuotes(t *testing.T) {
	price := decimal.NewFromInt(60)
	inner := &countingSource{quotes: map[string]*decimal.Decimal{"2458": &price}}
	cached := NewCachedSource(nil, inner, inner, 0, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		instruments, err := cached.FetchUniverse(ctx)
		require.NoError(t, err)
		require.Len(t, instruments, 1)
	}
	assert.Equal(t, 1, inner.calls)

	q, err := cached.FetchQuote(ctx, "2458")
	require.NoError(t, err)
	assert.True(t, q.Equal(price))

	missing, err := cached.FetchQuote(ctx, "0000")
	require.NoError(t, err)
	assert.Nil(t, missing)
	missing, err = cached.FetchQuote(ctx, "0000")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, 3, inner.calls)

	_, err = cached.FetchDailySeries(ctx, "15821", time.Time{})
	assert.Error(t, err)
}

func TestCachedSourceClear(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, nil, nil, time.Minute, nil)

	_, err := cached.FetchDailySeries(context.Background(), "15821", time.Time{})
	require.NoError(t, err)
	cached.Clear()

	assert.Equal(t, 0, cached.ItemCount())
	hits, misses, _ := cached.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}
