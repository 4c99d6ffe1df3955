package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"StockTrend/internal/model"

	"golang.org/x/time/rate"
)

// Fetcher retrieves recent daily price records for one symbol.
// Records are returned in ascending date order. A price the provider left
// empty is reported as NaN so that the store rejects the record.
type Fetcher interface {
	FetchDaily(ctx context.Context, symbol string) ([]model.PriceRecord, error)
	Name() string
}

// NewHTTPClient returns a client with a 30s timeout, routed through proxyURL when set.
func NewHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// newLimiter paces requests to perMinute calls per minute. Zero disables pacing.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}
