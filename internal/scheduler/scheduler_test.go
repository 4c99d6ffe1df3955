package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"StockTrend/internal/analyzer"
	"StockTrend/internal/collector"
	"StockTrend/internal/logging"
	"StockTrend/internal/model"
	"StockTrend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureSender) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

type marker struct{ at time.Time }

func (m *marker) MarkRun(t time.Time) { m.at = t }

func newTestScheduler(t *testing.T, m collector.Merger, st analyzer.Reader) (*Scheduler, *captureSender) {
	t.Helper()
	logger := logging.Discard()
	col := collector.NewCollector(&collector.MockFetcher{Price: 100, Days: 25}, m, 0, logger)
	an := analyzer.New(st, nil, logger)
	s := NewScheduler(context.Background(), col, an, []string{"ABC", "XYZ"}, nil, logger)
	sender := &captureSender{}
	s.Notifier = sender
	return s, sender
}

func TestRunNow_FetchesThenAnalyses(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), nil)
	s, sender := newTestScheduler(t, st, st)
	mk := &marker{}
	s.Marker = mk

	s.RunNow()

	syms, err := st.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC", "XYZ"}, syms)

	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0], "<b>ABC</b>")
	assert.Contains(t, sender.msgs[0], "<b>XYZ</b>")
	assert.False(t, mk.at.IsZero())

	// a second cycle inserts nothing new
	s.RunNow()
	recs, err := st.Records(context.Background(), "ABC")
	require.NoError(t, err)
	assert.Len(t, recs, 25)
}

type downStore struct{}

func (downStore) Merge(context.Context, []model.PriceRecord) (*model.MergeReport, error) {
	return &model.MergeReport{}, store.ErrStoreUnavailable
}

func TestRunNow_StoreUnavailableSkipsAnalysis(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), nil)
	s, sender := newTestScheduler(t, downStore{}, st)

	s.RunNow()

	require.Len(t, sender.msgs, 1)
	assert.True(t, strings.HasPrefix(sender.msgs[0], "❌ <b>StockTrend fetch aborted</b>"))
}

// unreadable serves the symbol list but fails every series read.
type unreadable struct{ *store.Store }

func (unreadable) Records(context.Context, string) ([]model.PriceRecord, error) {
	return nil, store.ErrStoreUnavailable
}

func TestRunNow_ReadOutageIsNotMarked(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), nil)
	s, sender := newTestScheduler(t, st, unreadable{st})
	mk := &marker{}
	s.Marker = mk

	s.RunNow()

	require.Len(t, sender.msgs, 1)
	assert.True(t, strings.HasPrefix(sender.msgs[0], "❌ <b>StockTrend analysis aborted</b>"))
	assert.True(t, mk.at.IsZero())
}

type slowFetcher struct {
	collector.MockFetcher
	delay time.Duration
}

func (f *slowFetcher) FetchDaily(ctx context.Context, symbol string) ([]model.PriceRecord, error) {
	time.Sleep(f.delay)
	return f.MockFetcher.FetchDaily(ctx, symbol)
}

func TestStop_WaitsForTriggeredCycle(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), nil)
	s, sender := newTestScheduler(t, st, st)
	s.Collector.Fetcher = &slowFetcher{MockFetcher: collector.MockFetcher{Price: 100, Days: 25}, delay: 50 * time.Millisecond}
	mk := &marker{}
	s.Marker = mk

	s.Start()
	s.Trigger()
	s.Stop()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.msgs, 1)
	assert.False(t, mk.at.IsZero())
}

func TestRegisterAll(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), nil)
	s, _ := newTestScheduler(t, st, st)

	require.NoError(t, s.RegisterAll("0 0 22 * * 1-5", "0 30 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)

	assert.Error(t, s.RegisterAll("not a cron", ""))
}
