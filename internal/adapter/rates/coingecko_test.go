package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoraes/aportebtc-backend/internal/domain"
)

func quoteServer(t *testing.T, hits *atomic.Int32, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Contains(t, r.URL.String(), "/api/v3/simple/price")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestCurrent_FetchesAndParsesQuote(t *testing.T) {
	var hits atomic.Int32
	server := quoteServer(t, &hits, `{"bitcoin":{"brl":612345.67,"usd":101234.5}}`)
	defer server.Close()

	client := NewClient(server.URL, time.Minute)
	rate, err := client.Current(context.Background())
	require.NoError(t, err)

	assert.True(t, rate.BRL.Equal(decimal.RequireFromString("612345.67")))
	assert.True(t, rate.USD.Equal(decimal.RequireFromString("101234.5")))
	assert.WithinDuration(t, time.Now(), rate.AsOf, time.Minute)
}

func TestCurrent_ServesFromCacheWithinTTL(t *testing.T) {
	var hits atomic.Int32
	server := quoteServer(t, &hits, `{"bitcoin":{"brl":600000,"usd":100000}}`)
	defer server.Close()

	client := NewClient(server.URL, time.Minute)
	ctx := context.Background()

	first, err := client.Current(ctx)
	require.NoError(t, err)
	second, err := client.Current(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load(), "second call must hit the cache")
	assert.True(t, first.BRL.Equal(second.BRL))
}

func TestCurrent_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Minute)
	_, err := client.Current(context.Background())
	assert.ErrorContains(t, err, "status 429")
}

func TestCurrent_RejectsZeroQuotes(t *testing.T) {
	var hits atomic.Int32
	server := quoteServer(t, &hits, `{"bitcoin":{"brl":0,"usd":100000}}`)
	defer server.Close()

	client := NewClient(server.URL, time.Minute)
	_, err := client.Current(context.Background())
	assert.Error(t, err)
}

var _ domain.RateProvider = (*Client)(nil)
