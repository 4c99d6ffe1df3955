package model

// PriceRecord is one daily bar for one ticker. Records are identified by (Symbol, Date).
type PriceRecord struct {
	Symbol string  `json:"symbol"`
	Date   Date    `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// RecordKey is the deduplication key of a PriceRecord.
type RecordKey struct {
	Symbol string
	Date   Date
}

// Key returns the (symbol, date) identity of r.
func (r PriceRecord) Key() RecordKey {
	return RecordKey{Symbol: r.Symbol, Date: r.Date}
}

func (k RecordKey) String() string {
	return k.Symbol + "@" + k.Date.String()
}
