package model

// IndicatorPoint holds the rolling indicators of one trading day.
// Points are derived on demand and never persisted by the store.
type IndicatorPoint struct {
	Date       Date    `json:"date"`
	Close      float64 `json:"close"`
	SMA        float64 `json:"sma"`
	EMA        float64 `json:"ema"`
	RollingStd float64 `json:"rolling_std"`
	UpperBand  float64 `json:"upper_band"`
	LowerBand  float64 `json:"lower_band"`
}

// SymbolResult is the outcome of analysing one symbol. Err is set when the
// symbol was skipped, Points otherwise.
type SymbolResult struct {
	Symbol string
	Points []IndicatorPoint
	Err    error
}

// Skipped reports whether no series was produced for the symbol.
func (r SymbolResult) Skipped() bool { return r.Err != nil }
