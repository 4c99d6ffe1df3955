package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"StockTrend/internal/model"
	"StockTrend/internal/store"

	"github.com/sirupsen/logrus"
)

// DefaultRecentDays is how many of the newest fetched days are merged per cycle.
const DefaultRecentDays = 2

// Merger is the part of the store a fetch cycle writes to.
type Merger interface {
	Merge(ctx context.Context, records []model.PriceRecord) (*model.MergeReport, error)
}

// FetchObserver is told the outcome of every symbol fetch.
type FetchObserver interface {
	ObserveFetch(symbol string, err error)
}

// FetchResult is the outcome of one symbol in a fetch cycle.
// Err is set when the fetch failed and nothing was merged.
type FetchResult struct {
	Symbol  string
	Fetched int
	Report  *model.MergeReport
	Err     error
}

// Collector runs fetch-and-merge cycles.
type Collector struct {
	Fetcher    Fetcher
	Store      Merger
	RecentDays int // 0 merges everything fetched
	Observer   FetchObserver
	Log        logrus.FieldLogger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, st Merger, recentDays int, logger logrus.FieldLogger) *Collector {
	return &Collector{Fetcher: fetcher, Store: st, RecentDays: recentDays, Log: logger}
}

// Collect fetches every symbol in order and merges its most recent records.
//
// A failed fetch is recorded in that symbol's result and the cycle continues.
// A store failure aborts the cycle; the results gathered so far are returned
// with the error.
func (c *Collector) Collect(ctx context.Context, symbols []string) ([]FetchResult, error) {
	results := make([]FetchResult, 0, len(symbols))
	for _, symbol := range symbols {
		log := c.Log.WithField("symbol", symbol)

		records, err := c.Fetcher.FetchDaily(ctx, symbol)
		if c.Observer != nil {
			c.Observer.ObserveFetch(symbol, err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return results, fmt.Errorf("fetch cycle aborted: %w", ctx.Err())
			}
			log.WithError(err).Warn("fetch failed")
			results = append(results, FetchResult{Symbol: symbol, Err: fmt.Errorf("fetch %s via %s: %w", symbol, c.Fetcher.Name(), err)})
			continue
		}

		recent := mostRecent(records, c.RecentDays)
		report, err := c.Store.Merge(ctx, recent)
		results = append(results, FetchResult{Symbol: symbol, Fetched: len(records), Report: report, Err: err})
		if err != nil {
			log.WithError(err).Error("merge aborted")
			return results, err
		}

		log.WithFields(logrus.Fields{
			"fetched":  len(records),
			"inserted": report.Inserted,
			"skipped":  report.SkippedDuplicate,
			"rejected": report.Rejected,
		}).Info("merged")
		for _, r := range report.Rejections {
			log.WithField("date", r.Record.Date.String()).WithError(r.Reason).Warn("record rejected")
		}
	}
	return results, nil
}

// mostRecent returns the last n records by date; n <= 0 keeps all.
func mostRecent(records []model.PriceRecord, n int) []model.PriceRecord {
	sorted := make([]model.PriceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	if n > 0 && len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}

// Failed reports whether any symbol fetch failed or a merge was aborted.
func Failed(results []FetchResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// IsFatal reports whether err must stop the whole cycle.
func IsFatal(err error) bool {
	return errors.Is(err, store.ErrStoreUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
