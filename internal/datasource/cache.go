package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/cb-sentinel/internal/metrics"
	"github.com/yourusername/cb-sentinel/internal/models"
)

// DefaultCacheTTL keeps fetched data for an hour
const DefaultCacheTTL = time.Hour

const universeCacheKey = "universe"

// CachedSource memoizes fetches from the wrapped sources for a fixed TTL.
// Only successful fetches are cached. A nil inner source makes the matching
// method return an error.
type CachedSource struct {
	series   SeriesSource
	universe UniverseSource
	quotes   QuoteSource

	cache  *cache.Cache
	ttl    time.Duration
	logger *logrus.Entry

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCachedSource wraps the given sources. A non-positive ttl selects DefaultCacheTTL.
func NewCachedSource(series SeriesSource, universe UniverseSource, quotes QuoteSource, ttl time.Duration, logger *logrus.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &CachedSource{
		series:   series,
		universe: universe,
		quotes:   quotes,
		cache:    cache.New(ttl, ttl*2),
		ttl:      ttl,
		logger:   logger.WithField("component", "fetch_cache"),
	}
}

// FetchDailySeries returns cached rows for (instrumentID, start) when present.
// Callers must not mutate the returned rows.
func (c *CachedSource) FetchDailySeries(ctx context.Context, instrumentID string, start time.Time) ([]models.RawRecord, error) {
	if c.series == nil {
		return nil, fmt.Errorf("no series source configured")
	}
	key := fmt.Sprintf("series:%s:%s", instrumentID, start.Format("2006-01-02"))
	if v, ok := c.lookup(key); ok {
		return v.([]models.RawRecord), nil
	}

	rows, err := c.series.FetchDailySeries(ctx, instrumentID, start)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, rows, c.ttl)
	return rows, nil
}

// FetchUniverse returns the cached instrument registry when present
func (c *CachedSource) FetchUniverse(ctx context.Context) ([]models.CBInstrument, error) {
	if c.universe == nil {
		return nil, fmt.Errorf("no universe source configured")
	}
	if v, ok := c.lookup(universeCacheKey); ok {
		return v.([]models.CBInstrument), nil
	}

	instruments, err := c.universe.FetchUniverse(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(universeCacheKey, instruments, c.ttl)
	return instruments, nil
}

// FetchQuote returns the cached quote for ticker when present. Absent quotes
// are cached too.
func (c *CachedSource) FetchQuote(ctx context.Context, ticker string) (*decimal.Decimal, error) {
	if c.quotes == nil {
		return nil, fmt.Errorf("no quote source configured")
	}
	key := "quote:" + ticker
	if v, ok := c.lookup(key); ok {
		return v.(*decimal.Decimal), nil
	}

	quote, err := c.quotes.FetchQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, quote, c.ttl)
	return quote, nil
}

func (c *CachedSource) lookup(key string) (interface{}, bool) {
	v, found := c.cache.Get(key)

	c.mu.Lock()
	if found {
		c.hitCount++
	} else {
		c.missCount++
	}
	c.mu.Unlock()

	metrics.RecordCacheLookup(found)
	c.logger.WithFields(logrus.Fields{"cache_key": key, "hit": found}).Debug("Cache lookup")
	return v, found
}

// Clear flushes the entire cache
func (c *CachedSource) Clear() {
	c.cache.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hitCount = 0
	c.missCount = 0
}

// Stats returns cache statistics
func (c *CachedSource) Stats() (hits, misses uint64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hits = c.hitCount
	misses = c.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (c *CachedSource) ItemCount() int {
	return c.cache.ItemCount()
}
