// Package recorder keeps a history of fetch and analysis cycles.
package recorder

import (
	"StockTrend/internal/collector"
	"StockTrend/internal/model"
)

// Recorder persists cycle history for later inspection.
type Recorder interface {
	RecordFetch(results []collector.FetchResult) error
	RecordAnalysis(results []model.SymbolResult) error
	Close() error
}
