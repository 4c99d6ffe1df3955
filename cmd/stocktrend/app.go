package main

import (
	"context"
	"fmt"

	"StockTrend/internal/analyzer"
	"StockTrend/internal/collector"
	"StockTrend/internal/config"
	"StockTrend/internal/logging"
	"StockTrend/internal/metrics"
	"StockTrend/internal/publish"
	"StockTrend/internal/recorder"
	"StockTrend/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// app wires the components shared by all commands.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *store.Store
	recorder recorder.Recorder
	notifier *publish.TelegramNotifier
	closers  []func() error
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	logger := logging.FromEnv()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	a := &app{cfg: cfg, log: logger, registry: reg, metrics: m}

	backend, err := openBackend(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, backend.Close)
	a.store = store.New(backend, m)
	logger.WithField("driver", cfg.Database.Driver).Info("store opened")

	a.recorder = recorder.NewNoopRecorder()
	if cfg.Database.Driver == "sqlite" {
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.WithError(err).Warn("init sqlite recorder failed, using noop")
		} else {
			a.recorder = rec
			a.closers = append(a.closers, rec.Close)
		}
	}

	if cfg.Telegram.Enabled() {
		a.notifier = publish.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}
	return a, nil
}

func openBackend(ctx context.Context, db config.Database) (store.Backend, error) {
	switch db.Driver {
	case "sqlite":
		return store.OpenSQLite(db.SQLitePath)
	case "postgres":
		return store.OpenPostgres(ctx, db.PostgresDSN)
	case "memory":
		return store.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", db.Driver)
	}
}

func (a *app) fetcher() collector.Fetcher {
	ds := a.cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(a.cfg.Proxy, ds.RequestsPerMinute)
	case "mock":
		return &collector.MockFetcher{Price: 100, Days: 30}
	default:
		return collector.NewAlphaVantageFetcher(ds.APIKey, a.cfg.Proxy, ds.RequestsPerMinute)
	}
}

func (a *app) collector(recentDays int) *collector.Collector {
	f := a.fetcher()
	a.log.WithField("provider", f.Name()).Info("data source selected")
	c := collector.NewCollector(f, a.store, recentDays, a.log)
	c.Observer = a.metrics
	return c
}

// sinks opens the configured export targets. A Redis that cannot be reached is logged and skipped.
func (a *app) sinks(ctx context.Context) []publish.Sink {
	var sinks []publish.Sink
	if dir := a.cfg.Export.JSONDir; dir != "" {
		sinks = append(sinks, publish.NewJSONSink(dir))
	}
	if addr := a.cfg.Export.RedisAddr; addr != "" {
		rdb, err := publish.DialRedis(ctx, addr)
		if err != nil {
			a.log.WithError(err).Warn("redis sink disabled")
		} else {
			a.closers = append(a.closers, rdb.Close)
			sinks = append(sinks, publish.NewRedisSink(rdb, a.cfg.Export.RedisTTL))
		}
	}
	return sinks
}

func (a *app) analyzer(ctx context.Context, window int, z float64) *analyzer.Analyzer {
	an := analyzer.New(a.store, a.sinks(ctx), a.log)
	an.Window = window
	an.Z = z
	an.Observer = a.metrics
	return an
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("close")
		}
	}
}
