package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"StockTrend/internal/collector"

	"github.com/google/subcommands"
)

type fetchCmd struct {
	symbols string
	all     bool
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch recent daily prices and merge them into the store" }
func (*fetchCmd) Usage() string {
	return `stocktrend fetch [-symbols IBM,AAPL] [-all]

  Fetches the configured symbols once and prints what each merge inserted,
  skipped as already known, or rejected.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "comma separated symbols, overrides the config")
	f.BoolVar(&c.all, "all", false, "merge every fetched day instead of the most recent ones")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.Close()

	symbols := a.cfg.DataSource.Symbols
	if c.symbols != "" {
		symbols = strings.Split(c.symbols, ",")
	}
	recent := a.cfg.DataSource.RecentDays
	if c.all {
		recent = 0
	}

	results, err := a.collector(recent).Collect(ctx, symbols)
	if rerr := a.recorder.RecordFetch(results); rerr != nil {
		a.log.WithError(rerr).Error("record fetch")
	}
	printFetchResults(results)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if collector.Failed(results) {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printFetchResults(results []collector.FetchResult) {
	for _, r := range results {
		if r.Report == nil {
			fmt.Printf("%-8s error: %v\n", r.Symbol, r.Err)
			continue
		}
		fmt.Printf("%-8s fetched %3d  inserted %3d  skipped %3d  rejected %3d\n",
			r.Symbol, r.Fetched, r.Report.Inserted, r.Report.SkippedDuplicate, r.Report.Rejected)
		for _, rej := range r.Report.Rejections {
			fmt.Printf("         rejected %s: %v\n", rej.Record.Key(), rej.Reason)
		}
	}
}
