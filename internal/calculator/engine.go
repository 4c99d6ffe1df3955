// Package calculator derives technical indicators from stored price series.
package calculator

import (
	"iter"

	"StockTrend/internal/model"
)

const (
	DefaultWindow = 20
	DefaultZ      = 1.96
)

// Compute returns the rolling indicators of one symbol's series.
//
// series must be ordered by date with no repeated date and a single symbol.
// Only positions with a complete trailing window are emitted, so a series of
// n records yields n-window+1 points. The returned sequence recomputes from a
// private copy of series on every iteration.
func Compute(series []model.PriceRecord, window int, z float64) (iter.Seq[model.IndicatorPoint], error) {
	if window < 2 {
		return nil, ErrInvalidWindow
	}
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	if len(series) < window {
		symbol := ""
		if len(series) > 0 {
			symbol = series[0].Symbol
		}
		return nil, &MinimumDataError{Symbol: symbol, Have: len(series), Need: window}
	}

	records := make([]model.PriceRecord, len(series))
	copy(records, series)

	return func(yield func(model.IndicatorPoint) bool) {
		closes := extractCloses(records)
		alpha := emaAlpha(window)
		ema := closes[0]
		for i, c := range closes {
			if i > 0 {
				ema = nextEMA(ema, c, alpha)
			}
			if i < window-1 {
				continue
			}
			w := closes[i-window+1 : i+1]
			sma := mean(w)
			std := sampleStdDev(w, sma)
			p := model.IndicatorPoint{
				Date:       records[i].Date,
				Close:      c,
				SMA:        sma,
				EMA:        ema,
				RollingStd: std,
				UpperBand:  sma + z*std,
				LowerBand:  sma - z*std,
			}
			if !yield(p) {
				return
			}
		}
	}, nil
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[model.IndicatorPoint]) []model.IndicatorPoint {
	var out []model.IndicatorPoint
	for p := range seq {
		out = append(out, p)
	}
	return out
}

func checkSeries(series []model.PriceRecord) error {
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		switch {
		case cur.Symbol != prev.Symbol:
			return &MalformedInputError{Index: i, Reason: "mixes symbols " + prev.Symbol + " and " + cur.Symbol}
		case cur.Date == prev.Date:
			return &MalformedInputError{Index: i, Reason: "duplicate date " + cur.Date.String()}
		case cur.Date.Before(prev.Date):
			return &MalformedInputError{Index: i, Reason: "date " + cur.Date.String() + " is out of order"}
		}
	}
	return nil
}
