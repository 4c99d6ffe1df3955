package store

import (
	"context"
	"sort"
	"sync"

	"StockTrend/internal/model"
)

// MemoryBackend keeps records in a map. It is meant for tests and dry runs.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[model.RecordKey]model.PriceRecord
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[model.RecordKey]model.PriceRecord)}
}

func (b *MemoryBackend) InsertIfAbsent(_ context.Context, r model.PriceRecord) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := r.Key()
	if _, exists := b.data[k]; exists {
		return false, nil
	}
	b.data[k] = r
	return true, nil
}

func (b *MemoryBackend) Records(_ context.Context, symbol string) ([]model.PriceRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []model.PriceRecord
	for k, r := range b.data {
		if k.Symbol == symbol {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (b *MemoryBackend) Symbols(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range b.data {
		seen[k.Symbol] = struct{}{}
	}
	syms := make([]string, 0, len(seen))
	for s := range seen {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms, nil
}

// Len returns the number of stored records.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }
func (b *MemoryBackend) Close() error               { return nil }

var _ Backend = (*MemoryBackend)(nil)
