// Package analyzer computes indicator series for every stored symbol and
// hands them to the configured sinks.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"StockTrend/internal/calculator"
	"StockTrend/internal/model"
	"StockTrend/internal/publish"

	"github.com/sirupsen/logrus"
)

// DefaultWorkers bounds how many symbols are computed at once.
const DefaultWorkers = 4

// Reader is the read side of the store.
type Reader interface {
	Symbols(ctx context.Context) ([]string, error)
	Records(ctx context.Context, symbol string) ([]model.PriceRecord, error)
}

// Observer is told the outcome of each symbol and each publish.
type Observer interface {
	ObserveCompute(symbol string, d time.Duration, err error)
	ObservePublish(sink string, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveCompute(string, time.Duration, error) {}
func (noopObserver) ObservePublish(string, error)                {}

// Analyzer runs one analysis cycle over the store.
type Analyzer struct {
	Store    Reader
	Window   int
	Z        float64
	Workers  int
	Sinks    []publish.Sink
	Observer Observer
	Log      logrus.FieldLogger
}

// New returns an Analyzer with the default window, band width and worker count.
func New(st Reader, sinks []publish.Sink, logger logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		Store:    st,
		Window:   calculator.DefaultWindow,
		Z:        calculator.DefaultZ,
		Workers:  DefaultWorkers,
		Sinks:    sinks,
		Observer: noopObserver{},
		Log:      logger,
	}
}

// Run analyses every stored symbol.
//
// Symbols are independent: one with too little history is reported as
// skipped and the others proceed. A failure to list symbols or to read a
// symbol's records aborts the run. Results are sorted by symbol.
func (a *Analyzer) Run(ctx context.Context) ([]model.SymbolResult, error) {
	symbols, err := a.Store.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return a.RunSymbols(ctx, symbols)
}

// RunSymbols analyses the given symbols only.
//
// The first read error cancels the symbols still pending and is returned
// instead of the results.
func (a *Analyzer) RunSymbols(ctx context.Context, symbols []string) ([]model.SymbolResult, error) {
	workers := a.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	obs := a.Observer
	if obs == nil {
		obs = noopObserver{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		fatal     error
		fatalOnce sync.Once
	)
	abort := func(err error) {
		fatalOnce.Do(func() {
			fatal = err
			cancel()
		})
	}

	results := make([]model.SymbolResult, len(symbols))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

spawn:
	for i, symbol := range symbols {
		if runCtx.Err() != nil {
			break
		}
		select {
		case <-runCtx.Done():
			break spawn
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := a.analyze(runCtx, symbol, obs)
			if err != nil {
				abort(err)
				return
			}
			results[i] = res
		}(i, symbol)
	}
	wg.Wait()

	if fatal != nil {
		return nil, fmt.Errorf("analysis aborted: %w", fatal)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis aborted: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Symbol < results[j].Symbol })
	return results, nil
}

// analyze returns a non-nil error only when the store could not be read.
// Compute errors stay on the symbol's result.
func (a *Analyzer) analyze(ctx context.Context, symbol string, obs Observer) (model.SymbolResult, error) {
	log := a.Log.WithField("symbol", symbol)
	res := model.SymbolResult{Symbol: symbol}

	records, err := a.Store.Records(ctx, symbol)
	if err != nil {
		log.WithError(err).Error("read records failed")
		return res, fmt.Errorf("read %s: %w", symbol, err)
	}

	start := time.Now()
	seq, err := calculator.Compute(records, a.Window, a.Z)
	if err == nil {
		res.Points = calculator.Collect(seq)
	}
	obs.ObserveCompute(symbol, time.Since(start), err)
	if err != nil {
		res.Err = err
		if errors.Is(err, calculator.ErrMinimumData) {
			log.WithError(err).Warn("symbol skipped")
		} else {
			log.WithError(err).Error("compute failed")
		}
		return res, nil
	}

	log.WithField("points", len(res.Points)).Debug("indicators computed")
	for _, sink := range a.Sinks {
		err := sink.Publish(ctx, symbol, res.Points)
		obs.ObservePublish(sink.Name(), err)
		if err != nil {
			log.WithField("sink", sink.Name()).WithError(err).Error("publish failed")
		}
	}
	return res, nil
}

// Skipped returns the results that produced no series.
func Skipped(results []model.SymbolResult) []model.SymbolResult {
	var out []model.SymbolResult
	for _, r := range results {
		if r.Skipped() {
			out = append(out, r)
		}
	}
	return out
}
