package recorder

import (
	"StockTrend/internal/collector"
	"StockTrend/internal/model"
)

// NoopRecorder is a no-op implementation used when history is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordFetch(_ []collector.FetchResult) error { return nil }
func (n *NoopRecorder) RecordAnalysis(_ []model.SymbolResult) error { return nil }
func (n *NoopRecorder) Close() error                                { return nil }
