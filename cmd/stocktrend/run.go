package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockTrend/internal/metrics"
	"StockTrend/internal/scheduler"

	"github.com/google/subcommands"
)

type runCmd struct {
	now bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run the scheduled fetch and analysis daemon" }
func (*runCmd) Usage() string {
	return `stocktrend run [-now]

  Runs the fetch and analysis cycles on their cron schedules and serves
  /metrics and /healthz until interrupted.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.now, "now", os.Getenv("RUN_ON_START") == "true", "run one cycle immediately on start")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.Close()
	a.log.Info("StockTrend starting...")

	srv := metrics.NewServer(a.cfg.Metrics.Addr, a.registry, a.store, a.log)
	srv.Start()
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Stop(shutdownCtx)
	}()

	ds := a.cfg.DataSource
	an := a.analyzer(ctx, a.cfg.Indicators.Window, a.cfg.Indicators.Z)
	sched := scheduler.NewScheduler(ctx, a.collector(ds.RecentDays), an, ds.Symbols, a.recorder, a.log)
	if a.notifier != nil {
		sched.Notifier = a.notifier
	}
	sched.Marker = a.metrics

	if err := sched.RegisterAll(a.cfg.Schedule.FetchCron, a.cfg.Schedule.AnalyzeCron); err != nil {
		a.log.WithError(err).Error("register cron tasks")
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if c.now {
		a.log.Info("running one cycle now")
		sched.Trigger()
	}

	a.log.Info("StockTrend is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received, stopping...")
	cancel()
	return subcommands.ExitSuccess
}
