package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/cb-sentinel/internal/models"
	"github.com/yourusername/cb-sentinel/internal/normalizer"
)

func testHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 0
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = time.Millisecond
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, nil)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *FinMindClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewFinMindClient(testHTTPClient(), server.URL, "tok", nil)
	client.now = func() time.Time { return time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC) }
	return client
}

const cbDailyBody = `{"msg":"success","status":200,"data":[
 {"cb_id":"15821","cb_name":"X1","close":105.5,"unit":120,"date":"2024-06-12"},
 {"cb_id":"15821","cb_name":"X1","close":106,"unit":80,"date":"2024-06-13"}
]}`

func TestFinMindFetchDailySeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/data", r.URL.Path)
		assert.Equal(t, DatasetCBDaily, q.Get("dataset"))
		assert.Equal(t, "15821", q.Get("data_id"))
		assert.Equal(t, "2024-01-02", q.Get("start_date"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, cbDailyBody)
	})

	rows, err := client.FetchDailySeries(context.Background(), "15821", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	series, err := normalizer.Normalize("15821", rows)
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, "105.5", series.Points[0].Close.String())
	assert.Equal(t, int64(80), series.Points[1].Volume)
}

func TestFinMindEmptyDataIsNoData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"msg":"success","status":200,"data":[]}`)
	})

	rows, err := client.FetchDailySeries(context.Background(), "99999", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = normalizer.Normalize("99999", rows)
	assert.Equal(t, models.FailureNoData, models.Classify(err))
}

func TestFinMindErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantKind models.FailureKind
	}{
		{"envelope quota exceeded", http.StatusOK, `{"msg":"Requests reach the upper limit","status":402}`, ErrCodeRateLimitExceeded, models.FailureFetch},
		{"unauthorized", http.StatusUnauthorized, `{"msg":"bad token","status":401}`, ErrCodeAuthenticationFailed, models.FailureFetch},
		{"not found", http.StatusNotFound, `{"msg":"unknown id","status":404}`, ErrCodeNotFound, models.FailureNoData},
		{"malformed body", http.StatusOK, `not json`, ErrCodeInvalidData, models.FailureFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.FetchDailySeries(context.Background(), "15821", time.Time{})
			require.Error(t, err)

			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, tt.wantCode, dsErr.Code)
			assert.Equal(t, tt.wantKind, models.Classify(err))
		})
	}
}

func TestFinMindServerErrorIsFetchFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchDailySeries(context.Background(), "15821", time.Time{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFetchFailed))
	assert.Equal(t, models.FailureFetch, models.Classify(err))
}

func TestFinMindFetchUniverse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DatasetCBInfo, r.URL.Query().Get("dataset"))
		assert.Empty(t, r.URL.Query().Get("data_id"))
		fmt.Fprint(w, `{"msg":"success","status":200,"data":[
 {"cb_id":"24581","cb_name":"Y1","ConversionPrice":"50.0"},
 {"cb_id":"15821","cb_name":"X1","ConversionPrice":88.5,"stock_id":"1582"},
 {"cb_id":"","cb_name":"broken"},
 {"cb_id":"31001","cb_name":"Z1","ConversionPrice":"--"}
]}`)
	})

	instruments, err := client.FetchUniverse(context.Background())
	require.NoError(t, err)
	require.Len(t, instruments, 3)

	assert.Equal(t, "15821", instruments[0].BondID)
	assert.Equal(t, "1582", instruments[0].UnderlyingID)
	assert.Equal(t, "88.5", instruments[0].ConversionPrice.String())

	assert.Equal(t, "24581", instruments[1].BondID)
	assert.Equal(t, "2458", instruments[1].UnderlyingID)
	assert.Equal(t, "50", instruments[1].ConversionPrice.String())

	assert.Equal(t, "31001", instruments[2].BondID)
	assert.True(t, instruments[2].ConversionPrice.IsZero())
}

func TestFinMindFetchQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2024-05-31", q.Get("start_date"))
		switch q.Get("dataset") {
		case DatasetStockPrice:
			if q.Get("data_id") == "2330" {
				fmt.Fprint(w, `{"msg":"success","status":200,"data":[
 {"stock_id":"2330","close":880,"Trading_Volume":1000,"date":"2024-06-12"},
 {"stock_id":"2330","close":885,"Trading_Volume":900,"date":"2024-06-13"}]}`)
				return
			}
			fmt.Fprint(w, `{"msg":"success","status":200,"data":[]}`)
		case DatasetCBDaily:
			fmt.Fprint(w, cbDailyBody)
		}
	})
	ctx := context.Background()

	quote, err := client.FetchQuote(ctx, "2330")
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.Equal(t, "885", quote.String())

	quote, err = client.FetchQuote(ctx, "9999")
	require.NoError(t, err)
	assert.Nil(t, quote)

	quote, err = client.BondQuotes().FetchQuote(ctx, "15821")
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.Equal(t, "106", quote.String())
}

func TestFinMindHonorsCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, cbDailyBody)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchDailySeries(ctx, "15821", time.Time{})
	require.Error(t, err)
	assert.Equal(t, models.FailureFetch, models.Classify(err))
}

func TestUnderlyingFromBondID(t *testing.T) {
	assert.Equal(t, "1582", UnderlyingFromBondID("15821"))
	assert.Equal(t, "2330", UnderlyingFromBondID("233012"))
	assert.Equal(t, "12", UnderlyingFromBondID("12"))
}
