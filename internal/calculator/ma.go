package calculator

import (
	"errors"

	"StockTrend/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return mean(prices[len(prices)-period:]), nil
}

// CalculateEMA returns the last value of the EMA seeded with prices[0] and
// smoothed with alpha = 2/(period+1).
func CalculateEMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) == 0 {
		return 0, errors.New("no prices for EMA calculation")
	}
	alpha := emaAlpha(period)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = nextEMA(ema, p, alpha)
	}
	return ema, nil
}

func emaAlpha(period int) float64 {
	return 2.0 / float64(period+1)
}

func nextEMA(prev, price, alpha float64) float64 {
	return alpha*price + (1-alpha)*prev
}

// mean sums left to right so results stay reproducible bit for bit.
func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func extractCloses(records []model.PriceRecord) []float64 {
	closes := make([]float64, len(records))
	for i, r := range records {
		closes[i] = r.Close
	}
	return closes
}
