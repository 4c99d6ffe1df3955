package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"StockTrend/internal/calculator"
	"StockTrend/internal/config"
	"StockTrend/internal/model"

	"github.com/google/subcommands"
)

type analyzeCmd struct {
	window int
	z      float64
	symbol string
	full   bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "compute SMA, EMA and Bollinger bands for stored symbols" }
func (*analyzeCmd) Usage() string {
	return `stocktrend analyze [-window n] [-z k] [-symbol IBM] [-full]

  Computes the rolling indicators of every stored symbol, publishes them to the
  configured sinks and prints the latest point of each. Symbols with less than
  one window of history are reported as skipped.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.window, "window", 0, "rolling window (default from config)")
	f.Float64Var(&c.z, "z", 0, "band width in standard deviations, 0 puts the bands on the SMA (default from config)")
	f.StringVar(&c.symbol, "symbol", "", "analyse only this symbol")
	f.BoolVar(&c.full, "full", false, "print every point, not only the latest")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.Close()

	window, z := c.indicators(f, a.cfg.Indicators)
	if window < 2 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", calculator.ErrInvalidWindow)
		return subcommands.ExitUsageError
	}
	if z < 0 {
		fmt.Fprintf(os.Stderr, "Error: -z must not be negative\n")
		return subcommands.ExitUsageError
	}

	an := a.analyzer(ctx, window, z)
	var results []model.SymbolResult
	if c.symbol != "" {
		results, err = an.RunSymbols(ctx, []string{c.symbol})
	} else {
		results, err = an.Run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.recorder.RecordAnalysis(results); err != nil {
		a.log.WithError(err).Error("record analysis")
	}

	for _, r := range results {
		c.print(r)
	}
	return subcommands.ExitSuccess
}

// indicators returns the configured window and band width, replaced by the
// flags the user actually set so that -z 0 is honoured.
func (c *analyzeCmd) indicators(f *flag.FlagSet, cfg config.Indicators) (int, float64) {
	window, z := cfg.Window, cfg.Z
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "window":
			window = c.window
		case "z":
			z = c.z
		}
	})
	return window, z
}

func (c *analyzeCmd) print(r model.SymbolResult) {
	if r.Skipped() {
		fmt.Printf("%-8s skipped: %v\n", r.Symbol, r.Err)
		return
	}
	points := r.Points
	if !c.full && len(points) > 0 {
		points = points[len(points)-1:]
	}
	for _, p := range points {
		fmt.Printf("%-8s %s close %10.2f  sma %10.2f  ema %10.2f  std %8.2f  bands [%.2f, %.2f]\n",
			r.Symbol, p.Date, p.Close, p.SMA, p.EMA, p.RollingStd, p.LowerBand, p.UpperBand)
	}
}
