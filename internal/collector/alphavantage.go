package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"

	"StockTrend/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const alphaVantageURL = "https://www.alphavantage.co/query"

// AlphaVantageFetcher implements Fetcher with the TIME_SERIES_DAILY endpoint.
// The free tier allows five calls per minute, which is the default pace.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewAlphaVantageFetcher creates a fetcher paced to requestsPerMinute, with optional proxy support.
func NewAlphaVantageFetcher(apiKey, proxyURL string, requestsPerMinute int) *AlphaVantageFetcher {
	return &AlphaVantageFetcher{
		BaseURL: alphaVantageURL,
		APIKey:  apiKey,
		Client:  NewHTTPClient(proxyURL),
		Limiter: newLimiter(requestsPerMinute),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avDaily is the TIME_SERIES_DAILY response. Throttled or rejected calls
// come back with status 200 and one of the message fields set instead.
type avDaily struct {
	Series       map[string]avBar `json:"Time Series (Daily)"`
	Note         string           `json:"Note"`
	Information  string           `json:"Information"`
	ErrorMessage string           `json:"Error Message"`
}

type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// FetchDaily returns the compact daily series (the latest 100 trading days).
func (f *AlphaVantageFetcher) FetchDaily(ctx context.Context, symbol string) ([]model.PriceRecord, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("alphavantage rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", "compact")
	q.Set("apikey", f.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var daily avDaily
	if err := json.Unmarshal(body, &daily); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	switch {
	case daily.ErrorMessage != "":
		return nil, fmt.Errorf("alphavantage api error: %s", daily.ErrorMessage)
	case daily.Note != "":
		return nil, fmt.Errorf("alphavantage throttled: %s", daily.Note)
	case daily.Information != "":
		return nil, fmt.Errorf("alphavantage throttled: %s", daily.Information)
	case len(daily.Series) == 0:
		return nil, fmt.Errorf("alphavantage: no data returned for %s", symbol)
	}

	records := make([]model.PriceRecord, 0, len(daily.Series))
	for day, bar := range daily.Series {
		d, err := model.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: %w", err)
		}
		records = append(records, model.PriceRecord{
			Symbol: symbol,
			Date:   d,
			Open:   parsePrice(bar.Open),
			High:   parsePrice(bar.High),
			Low:    parsePrice(bar.Low),
			Close:  parsePrice(bar.Close),
			Volume: parseVolume(bar.Volume),
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

// parsePrice returns NaN for an empty or unparsable field.
func parsePrice(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return math.NaN()
	}
	return d.InexactFloat64()
}

// parseVolume returns -1 for an empty or unparsable field, which validation rejects.
func parseVolume(s string) int64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return -1
	}
	return d.IntPart()
}
