// Package store holds the deduplicated set of daily price records.
//
// A Store merges fetched batches into a Backend with a first-write-wins policy:
// a record whose (symbol, date) key is already present is skipped, never
// overwritten. Every backend provides an atomic insert-if-absent, which is what
// keeps concurrent merges of overlapping data free of duplicate rows.
package store

import (
	"context"
	"fmt"

	"StockTrend/internal/model"
)

// Backend is the durable record set behind a Store.
type Backend interface {
	// InsertIfAbsent stores r unless its key exists. It reports whether r was inserted.
	// The check and the write are a single atomic step with respect to r's key.
	InsertIfAbsent(ctx context.Context, r model.PriceRecord) (bool, error)

	// Records returns all records of symbol ordered by date ascending.
	Records(ctx context.Context, symbol string) ([]model.PriceRecord, error)

	// Symbols returns the distinct stored symbols in lexical order.
	Symbols(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}

// MergeObserver is notified of every merge outcome. err is non-nil for aborted merges.
type MergeObserver interface {
	ObserveMerge(report *model.MergeReport, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveMerge(*model.MergeReport, error) {}

// Store is the ingestion store. It is safe for concurrent use when its Backend is.
type Store struct {
	backend  Backend
	observer MergeObserver
}

// New wraps backend. A nil observer is allowed.
func New(backend Backend, observer MergeObserver) *Store {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Store{backend: backend, observer: observer}
}

// Merge adds the records whose key is not stored yet.
//
// Records are evaluated one by one and in input order, so a key repeated inside
// the batch keeps its first occurrence. Malformed records are rejected and
// listed in the report; they never abort the batch. A backend failure aborts
// the remaining records and returns ErrStoreUnavailable together with the
// report accumulated so far.
func (s *Store) Merge(ctx context.Context, records []model.PriceRecord) (report *model.MergeReport, err error) {
	report = &model.MergeReport{}
	defer func() { s.observer.ObserveMerge(report, err) }()

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("merge aborted: %w", err)
		}
		if err := Validate(rec); err != nil {
			report.Rejected++
			report.Rejections = append(report.Rejections, model.Rejection{Record: rec, Reason: err})
			continue
		}
		inserted, err := s.backend.InsertIfAbsent(ctx, rec)
		if err != nil {
			return report, fmt.Errorf("%w: insert %s: %w", ErrStoreUnavailable, rec.Key(), err)
		}
		if inserted {
			report.Inserted++
		} else {
			report.SkippedDuplicate++
		}
	}
	return report, nil
}

// Records returns the stored series of one symbol in date order.
func (s *Store) Records(ctx context.Context, symbol string) ([]model.PriceRecord, error) {
	recs, err := s.backend.Records(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrStoreUnavailable, symbol, err)
	}
	return recs, nil
}

// Symbols lists every symbol with at least one stored record.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	syms, err := s.backend.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list symbols: %w", ErrStoreUnavailable, err)
	}
	return syms, nil
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) Close() error {
	return s.backend.Close()
}
