package collector

import (
	"context"
	"time"

	"StockTrend/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Days    int
	Records map[string][]model.PriceRecord
	Errors  map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(_ context.Context, symbol string) ([]model.PriceRecord, error) {
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	if recs, ok := m.Records[symbol]; ok {
		return recs, nil
	}
	days := m.Days
	if days <= 0 {
		days = 30
	}
	return generateMockRecords(symbol, m.Price, days), nil
}

// generateMockRecords returns count consecutive days ending yesterday.
func generateMockRecords(symbol string, basePrice float64, count int) []model.PriceRecord {
	today := model.DateOf(time.Now())
	records := make([]model.PriceRecord, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		records[i] = model.PriceRecord{
			Symbol: symbol,
			Date:   today.AddDays(-(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return records
}
