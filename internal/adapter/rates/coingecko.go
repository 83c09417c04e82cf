package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/dmoraes/aportebtc-backend/internal/domain"
	"github.com/dmoraes/aportebtc-backend/internal/logger"
)

const (
	simplePricePath = "/api/v3/simple/price?ids=bitcoin&vs_currencies=brl,usd"
	cacheKey        = "current_rate"
)

// simplePriceResponse mirrors CoinGecko's /simple/price payload.
type simplePriceResponse struct {
	Bitcoin struct {
		BRL json.Number `json:"brl"`
		USD json.Number `json:"usd"`
	} `json:"bitcoin"`
}

// Client fetches the current BTC quote in both fiat currencies from
// CoinGecko and caches it for a short TTL, so bursts of summary requests
// do not hammer the upstream API. Implements domain.RateProvider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewClient creates a rate client with the given base URL and cache TTL.
func NewClient(baseURL string, ttl time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      gocache.New(ttl, 2*ttl),
	}
}

// Current returns the latest BTC quote, served from cache when fresh.
func (c *Client) Current(ctx context.Context) (*domain.CurrentRate, error) {
	if cached, found := c.cache.Get(cacheKey); found {
		rate := cached.(domain.CurrentRate)
		return &rate, nil
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(cacheKey, *rate)
	logger.L.Debug("fetched fresh BTC quote", "brl", rate.BRL, "usd", rate.USD)
	return rate, nil
}

func (c *Client) fetch(ctx context.Context) (*domain.CurrentRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+simplePricePath, nil)
	if err != nil {
		return nil, fmt.Errorf("building rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate API returned status %d", resp.StatusCode)
	}

	var payload simplePriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding rate response: %w", err)
	}

	brl, err := decimal.NewFromString(payload.Bitcoin.BRL.String())
	if err != nil {
		return nil, fmt.Errorf("parsing BRL quote: %w", err)
	}
	usd, err := decimal.NewFromString(payload.Bitcoin.USD.String())
	if err != nil {
		return nil, fmt.Errorf("parsing USD quote: %w", err)
	}

	rate := &domain.CurrentRate{BRL: brl, USD: usd, AsOf: time.Now()}
	if err := rate.Validate(); err != nil {
		return nil, fmt.Errorf("rate API returned unusable quotes: %w", err)
	}
	return rate, nil
}
