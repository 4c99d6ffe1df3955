// Package publish hands computed indicator series to their consumers.
package publish

import (
	"context"
	"encoding/json"
	"time"

	"StockTrend/internal/model"
)

// Sink receives the indicator series of one symbol after each analysis.
type Sink interface {
	Publish(ctx context.Context, symbol string, points []model.IndicatorPoint) error
	Name() string
}

// Series is the document every sink writes.
type Series struct {
	Symbol      string                 `json:"symbol"`
	GeneratedAt time.Time              `json:"generated_at"`
	Points      []model.IndicatorPoint `json:"points"`
}

func encodeSeries(symbol string, points []model.IndicatorPoint, at time.Time) ([]byte, error) {
	if points == nil {
		points = []model.IndicatorPoint{}
	}
	return json.Marshal(Series{Symbol: symbol, GeneratedAt: at.UTC(), Points: points})
}
