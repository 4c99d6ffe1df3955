package calculator

import (
	"errors"

	"StockTrend/internal/model"
)

// RangePosition returns where price sits within [low, high] clamped to 0..1.
func RangePosition(price, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	return min(max((price-low)/(high-low), 0), 1), nil
}

// BandPosition is the position of the close inside the Bollinger bands,
// 0 at the lower band and 1 at the upper band.
func BandPosition(p model.IndicatorPoint) float64 {
	pos, err := RangePosition(p.Close, p.UpperBand, p.LowerBand)
	if err != nil {
		return 0.5
	}
	return pos
}
