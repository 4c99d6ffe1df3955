// Package metrics exposes Prometheus counters for ingestion and analysis,
// and serves them next to a store health check.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"StockTrend/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics holds all Prometheus metrics for the ingestion and analysis cycles.
type Metrics struct {
	RecordsInserted prometheus.Counter
	RecordsSkipped  prometheus.Counter
	RecordsRejected prometheus.Counter
	MergesAborted   prometheus.Counter

	FetchesTotal *prometheus.CounterVec // labels: result=ok|error

	SymbolsAnalyzed prometheus.Counter
	SymbolsSkipped  prometheus.Counter
	ComputeDur      prometheus.Histogram

	PublishErrors *prometheus.CounterVec // labels: sink
	LastRun       prometheus.Gauge
}

// New creates the metrics and registers them with reg. A nil reg skips registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktrend_records_inserted_total",
			Help: "Price records inserted into the store",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktrend_records_skipped_duplicate_total",
			Help: "Price records skipped because their (symbol, date) was already stored",
		}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktrend_records_rejected_total",
			Help: "Malformed price records rejected at ingestion",
		}),
		MergesAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktrend_merges_aborted_total",
			Help: "Merges aborted before the whole batch was evaluated",
		}),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocktrend_fetches_total",
			Help: "Symbol fetches by result",
		}, []string{"result"}),
		SymbolsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktrend_symbols_analyzed_total",
			Help: "Symbols with a computed indicator series",
		}),
		SymbolsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktrend_symbols_skipped_total",
			Help: "Symbols skipped during analysis (insufficient history or read failure)",
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocktrend_compute_duration_seconds",
			Help:    "Indicator computation latency per symbol",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocktrend_publish_errors_total",
			Help: "Failed publishes by sink",
		}, []string{"sink"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocktrend_last_run_timestamp_seconds",
			Help: "Unix time of the last completed cycle",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RecordsInserted, m.RecordsSkipped, m.RecordsRejected, m.MergesAborted,
			m.FetchesTotal,
			m.SymbolsAnalyzed, m.SymbolsSkipped, m.ComputeDur,
			m.PublishErrors, m.LastRun,
		)
	}
	return m
}

// ObserveMerge implements store.MergeObserver.
func (m *Metrics) ObserveMerge(r *model.MergeReport, err error) {
	m.RecordsInserted.Add(float64(r.Inserted))
	m.RecordsSkipped.Add(float64(r.SkippedDuplicate))
	m.RecordsRejected.Add(float64(r.Rejected))
	if err != nil {
		m.MergesAborted.Inc()
	}
}

// ObserveFetch implements collector.FetchObserver.
func (m *Metrics) ObserveFetch(_ string, err error) {
	if err != nil {
		m.FetchesTotal.WithLabelValues("error").Inc()
		return
	}
	m.FetchesTotal.WithLabelValues("ok").Inc()
}

// ObserveCompute records one symbol's analysis outcome.
func (m *Metrics) ObserveCompute(_ string, d time.Duration, err error) {
	if err != nil {
		m.SymbolsSkipped.Inc()
		return
	}
	m.SymbolsAnalyzed.Inc()
	m.ComputeDur.Observe(d.Seconds())
}

// ObservePublish counts failed publishes per sink.
func (m *Metrics) ObservePublish(sink string, err error) {
	if err != nil {
		m.PublishErrors.WithLabelValues(sink).Inc()
	}
}

// MarkRun stamps the end of a cycle.
func (m *Metrics) MarkRun(t time.Time) { m.LastRun.Set(float64(t.Unix())) }

// Pinger is anything whose reachability gates health, usually the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers /healthz by pinging the store.
func HealthHandler(p Pinger, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := struct {
			Status  string `json:"status"`
			Uptime  string `json:"uptime"`
			StoreOK bool   `json:"store_ok"`
			Error   string `json:"error,omitempty"`
		}{
			Status:  "healthy",
			Uptime:  time.Since(startedAt).Round(time.Second).String(),
			StoreOK: true,
		}

		code := http.StatusOK
		if err := p.Ping(ctx); err != nil {
			status.Status = "unhealthy"
			status.StoreOK = false
			status.Error = err.Error()
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	}
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
	log  logrus.FieldLogger
}

// NewServer creates a metrics and health server backed by gatherer.
func NewServer(addr string, gatherer prometheus.Gatherer, health Pinger, logger logrus.FieldLogger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", HealthHandler(health, time.Now()))

	return &Server{
		addr: addr,
		log:  logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.WithField("addr", s.addr).Info("metrics server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("metrics server error")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
