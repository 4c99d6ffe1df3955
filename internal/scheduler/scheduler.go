package scheduler

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"StockTrend/internal/analyzer"
	"StockTrend/internal/collector"
	"StockTrend/internal/model"
	"StockTrend/internal/publish"
	"StockTrend/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sender delivers a formatted message, usually the Telegram notifier.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// RunMarker is told when a cycle completes.
type RunMarker interface {
	MarkRun(t time.Time)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Analyzer  *analyzer.Analyzer
	Symbols   []string
	Notifier  Sender // nil disables notifications
	Recorder  recorder.Recorder
	Marker    RunMarker
	Log       logrus.FieldLogger
	Ctx       context.Context

	mu      sync.Mutex // one cycle at a time
	pending sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, an *analyzer.Analyzer, symbols []string, rec recorder.Recorder, logger logrus.FieldLogger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Analyzer:  an,
		Symbols:   symbols,
		Recorder:  rec,
		Log:       logger,
		Ctx:       ctx,
	}
}

// RegisterAll registers the fetch cycle and, when analyzeCron is set, a separate analysis task.
func (s *Scheduler) RegisterAll(fetchCron, analyzeCron string) error {
	if _, err := s.Cron.AddFunc(fetchCron, s.RunNow); err != nil {
		return fmt.Errorf("register fetch task: %w", err)
	}
	if analyzeCron != "" {
		if _, err := s.Cron.AddFunc(analyzeCron, s.analyzeTask); err != nil {
			return fmt.Errorf("register analyze task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running cycles to finish,
// including the ones started with Trigger.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.pending.Wait()
	s.Log.Info("scheduler stopped")
}

// RunNow executes a full fetch and analysis cycle immediately.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fetch() {
		return
	}
	s.analyze()
}

// Trigger starts a full cycle in the background. Stop waits for it.
func (s *Scheduler) Trigger() {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.RunNow()
	}()
}

func (s *Scheduler) analyzeTask() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyze()
}

// fetch reports whether the cycle may continue with analysis.
func (s *Scheduler) fetch() bool {
	s.Log.WithField("symbols", len(s.Symbols)).Info("running fetch task")
	results, err := s.Collector.Collect(s.Ctx, s.Symbols)
	if rerr := s.Recorder.RecordFetch(results); rerr != nil {
		s.Log.WithError(rerr).Error("record fetch")
	}
	if err != nil {
		s.Log.WithError(err).Error("fetch cycle aborted")
		s.trySend(fmt.Sprintf("❌ <b>StockTrend fetch aborted</b>\n\n%s", html.EscapeString(err.Error())))
		return !collector.IsFatal(err)
	}
	if collector.Failed(results) {
		s.trySend(publish.FormatMergeSummary(results, time.Now()))
	}
	return true
}

func (s *Scheduler) analyze() {
	s.Log.Info("running analysis task")
	results, err := s.Analyzer.Run(s.Ctx)
	if err != nil {
		s.Log.WithError(err).Error("analysis aborted")
		s.trySend(fmt.Sprintf("❌ <b>StockTrend analysis aborted</b>\n\n%s", html.EscapeString(err.Error())))
		return
	}
	if err := s.Recorder.RecordAnalysis(results); err != nil {
		s.Log.WithError(err).Error("record analysis")
	}
	s.logSummary(results)
	s.trySend(publish.FormatRunSummary(results, time.Now()))
	if s.Marker != nil {
		s.Marker.MarkRun(time.Now())
	}
}

func (s *Scheduler) logSummary(results []model.SymbolResult) {
	skipped := analyzer.Skipped(results)
	s.Log.WithFields(logrus.Fields{
		"analysed": len(results) - len(skipped),
		"skipped":  len(skipped),
	}).Info("analysis complete")
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Send(s.Ctx, text); err != nil {
		s.Log.WithError(err).Error("send notification")
	}
}
