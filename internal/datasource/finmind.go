package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/cb-sentinel/internal/metrics"
	"github.com/yourusername/cb-sentinel/internal/models"
	"github.com/yourusername/cb-sentinel/internal/normalizer"
)

// FinMind v4 datasets
const (
	DatasetCBDaily    = "TaiwanStockConvertibleBondDaily"
	DatasetCBInfo     = "TaiwanStockConvertibleBondInfo"
	DatasetStockPrice = "TaiwanStockPrice"
)

// DefaultFinMindBaseURL is the public v4 endpoint
const DefaultFinMindBaseURL = "https://api.finmindtrade.com/api/v4"

const (
	finMindSourceName  = "finmind"
	underlyingIDLength = 4

	// quoteLookback covers long market holidays when looking for a last close
	quoteLookback = 14 * 24 * time.Hour
)

// finMindResponse is the envelope of every /data response
type finMindResponse struct {
	Msg    string             `json:"msg"`
	Status int                `json:"status"`
	Data   []models.RawRecord `json:"data"`
}

// FinMindClient reads Taiwan convertible bond and equity data from FinMind.
// It implements SeriesSource, UniverseSource and QuoteSource.
type FinMindClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	token      string
	logger     *logrus.Entry
	now        func() time.Time
}

// NewFinMindClient creates a FinMind client. An empty token uses the anonymous quota.
func NewFinMindClient(httpClient *RateLimitedHTTPClient, baseURL, token string, logger *logrus.Logger) *FinMindClient {
	if logger == nil {
		logger = logrus.New()
	}
	if baseURL == "" {
		baseURL = DefaultFinMindBaseURL
	}
	return &FinMindClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		logger:     logger.WithField("source", finMindSourceName),
		now:        time.Now,
	}
}

// Name returns the name of the data source
func (c *FinMindClient) Name() string {
	return finMindSourceName
}

// FetchDailySeries retrieves daily convertible bond rows for bondID
func (c *FinMindClient) FetchDailySeries(ctx context.Context, bondID string, start time.Time) ([]models.RawRecord, error) {
	return c.fetch(ctx, DatasetCBDaily, bondID, start)
}

// FetchStockSeries retrieves daily equity rows for stockID
func (c *FinMindClient) FetchStockSeries(ctx context.Context, stockID string, start time.Time) ([]models.RawRecord, error) {
	return c.fetch(ctx, DatasetStockPrice, stockID, start)
}

// FetchUniverse lists convertible bonds with their conversion prices.
// Rows without a bond id are dropped. An unparseable conversion price is left
// at zero so the premium calculator can report it.
func (c *FinMindClient) FetchUniverse(ctx context.Context) ([]models.CBInstrument, error) {
	rows, err := c.fetch(ctx, DatasetCBInfo, "", time.Time{})
	if err != nil {
		return nil, err
	}

	// Later rows win for duplicated ids
	byID := make(map[string]models.CBInstrument, len(rows))
	now := c.now().UTC()
	for _, row := range rows {
		bondID := stringField(row, "cb_id")
		if bondID == "" {
			continue
		}
		inst := models.CBInstrument{
			BondID:       bondID,
			BondName:     stringField(row, "cb_name"),
			UnderlyingID: stringField(row, "stock_id", "underlying_id"),
			UpdatedAt:    now,
		}
		if inst.UnderlyingID == "" {
			inst.UnderlyingID = UnderlyingFromBondID(bondID)
		}
		if price, ok := decimalField(row, "ConversionPrice", "conversion_price"); ok {
			inst.ConversionPrice = price
		}
		byID[bondID] = inst
	}

	out := make([]models.CBInstrument, 0, len(byID))
	for _, inst := range byID {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BondID < out[j].BondID })
	return out, nil
}

// FetchQuote returns the latest equity close for stockID
func (c *FinMindClient) FetchQuote(ctx context.Context, stockID string) (*decimal.Decimal, error) {
	return c.latestClose(ctx, DatasetStockPrice, stockID)
}

// FetchBondQuote returns the latest convertible bond close for bondID
func (c *FinMindClient) FetchBondQuote(ctx context.Context, bondID string) (*decimal.Decimal, error) {
	return c.latestClose(ctx, DatasetCBDaily, bondID)
}

// BondQuotes exposes FetchBondQuote as a QuoteSource
func (c *FinMindClient) BondQuotes() QuoteSource {
	return QuoteFunc(c.FetchBondQuote)
}

func (c *FinMindClient) latestClose(ctx context.Context, dataset, id string) (*decimal.Decimal, error) {
	rows, err := c.fetch(ctx, dataset, id, c.now().Add(-quoteLookback))
	if err != nil {
		return nil, err
	}
	series, err := normalizer.Normalize(id, rows)
	if err != nil {
		if models.Classify(err) == models.FailureNoData {
			return nil, nil
		}
		return nil, err
	}
	last, _ := series.Last()
	return &last.Close, nil
}

func (c *FinMindClient) fetch(ctx context.Context, dataset, dataID string, start time.Time) ([]models.RawRecord, error) {
	params := url.Values{}
	params.Set("dataset", dataset)
	if dataID != "" {
		params.Set("data_id", dataID)
	}
	if !start.IsZero() {
		params.Set("start_date", start.Format("2006-01-02"))
	}
	endpoint := c.baseURL + "/data?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(finMindSourceName, ErrCodeUnknown, "failed to build request", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := c.logger.WithFields(logrus.Fields{"dataset": dataset, "data_id": dataID})
	started := time.Now()
	rows, err := c.do(ctx, req)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		metrics.RecordFetch(dataset, "failure", elapsed)
		log.WithError(err).Warn("FinMind request failed")
		return nil, err
	}
	metrics.RecordFetch(dataset, "success", elapsed)
	log.WithField("rows", len(rows)).Debug("FinMind request completed")
	return rows, nil
}

func (c *FinMindClient) do(ctx context.Context, req *http.Request) ([]models.RawRecord, error) {
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(finMindSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(finMindSourceName, ErrCodeNetworkError, "failed to read response", err)
	}

	var payload finMindResponse
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	decodeErr := decoder.Decode(&payload)

	status := resp.StatusCode
	if decodeErr == nil && payload.Status != 0 {
		status = payload.Status
	}
	if err := statusError(status, payload.Msg); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, NewDataSourceError(finMindSourceName, ErrCodeInvalidData, "failed to decode response", fmt.Errorf("%w: %v", ErrInvalidData, decodeErr))
	}
	if payload.Data == nil {
		return []models.RawRecord{}, nil
	}
	return payload.Data, nil
}

// statusError maps HTTP and envelope status codes onto DataSourceError
func statusError(status int, msg string) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests, status == http.StatusPaymentRequired:
		return NewDataSourceError(finMindSourceName, ErrCodeRateLimitExceeded, msg, ErrRateLimitExceeded)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return NewDataSourceError(finMindSourceName, ErrCodeAuthenticationFailed, msg, ErrAuthenticationFailed)
	case status == http.StatusNotFound:
		return NewDataSourceError(finMindSourceName, ErrCodeNotFound, msg, models.ErrNotFound)
	case status >= 500:
		return NewDataSourceError(finMindSourceName, ErrCodeServerError, msg, ErrServerError)
	default:
		return NewDataSourceError(finMindSourceName, ErrCodeUnknown, fmt.Sprintf("status %d: %s", status, msg), nil)
	}
}

// UnderlyingFromBondID derives the listed equity id from a Taiwan CB id,
// whose first four digits are the issuer's stock code.
func UnderlyingFromBondID(bondID string) string {
	if len(bondID) < underlyingIDLength {
		return bondID
	}
	return bondID[:underlyingIDLength]
}

func stringField(row models.RawRecord, keys ...string) string {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s != "" {
			return s
		}
	}
	return ""
}

func decimalField(row models.RawRecord, keys ...string) (decimal.Decimal, bool) {
	s := stringField(row, keys...)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
