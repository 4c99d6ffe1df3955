package store

import (
	"math"
	"strings"

	"StockTrend/internal/model"
)

// Validate checks that every field of r is populated and in range.
// Fetchers mark a missing price as NaN, so NaN is reported as missing.
func Validate(r model.PriceRecord) error {
	switch {
	case strings.TrimSpace(r.Symbol) == "":
		return &MalformedRecordError{Field: "symbol", Reason: "is missing"}
	case strings.TrimSpace(r.Symbol) != r.Symbol:
		return &MalformedRecordError{Field: "symbol", Reason: "has surrounding whitespace"}
	case r.Date.IsZero():
		return &MalformedRecordError{Field: "date", Reason: "is missing"}
	}

	prices := []struct {
		name string
		v    float64
	}{
		{"open", r.Open},
		{"high", r.High},
		{"low", r.Low},
		{"close", r.Close},
	}
	for _, p := range prices {
		if math.IsNaN(p.v) {
			return &MalformedRecordError{Field: p.name, Reason: "is missing"}
		}
		if math.IsInf(p.v, 0) {
			return &MalformedRecordError{Field: p.name, Reason: "is not finite"}
		}
		if p.v < 0 {
			return &MalformedRecordError{Field: p.name, Reason: "is negative"}
		}
	}
	if r.Volume < 0 {
		return &MalformedRecordError{Field: "volume", Reason: "is negative"}
	}
	return nil
}
