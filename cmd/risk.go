package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/renderer"
	"github.com/etnz/analytics/risk"
	"github.com/google/subcommands"
)

// riskCmd holds the flags for the 'risk' subcommand.
type riskCmd struct {
	account   string
	benchmark string
	period    string
	start     string
	end       string
	history   bool
}

func (*riskCmd) Name() string     { return "risk" }
func (*riskCmd) Synopsis() string { return "volatility, beta, drawdown and correlations of an account" }
func (*riskCmd) Usage() string {
	return `fin risk -a <account> [-benchmark <symbol>] [-period <period>] [-s <date>] [-d <date>] [-history]

  Measures the risk of an account against a market benchmark.
`
}

func (c *riskCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account to analyze")
	f.StringVar(&c.benchmark, "benchmark", "", "Benchmark symbol, defaults to the configured one")
	f.StringVar(&c.period, "period", date.Yearly.String(), "Predefined period (daily, weekly, monthly, quarterly, yearly)")
	f.StringVar(&c.start, "s", "", "Start date of the reporting period, overrides -period")
	f.StringVar(&c.end, "d", date.Today().String(), "End date of the reporting period")
	f.BoolVar(&c.history, "history", false, "Include rolling volatility and drawdown histories")
}

func (c *riskCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "-a is required")
		return subcommands.ExitUsageError
	}
	rng, err := parseRange(c.start, c.end, c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing the reporting period: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		return exitStatus(err)
	}
	defer a.Close()

	symbol := a.cfg.Risk.Benchmark
	if c.benchmark != "" {
		symbol = c.benchmark
	}
	benchmark := risk.NewBenchmark(symbol, a.src, newCache(a.cfg), a.cfg.Cache.TTL, a.logger)
	engine := risk.NewEngine(a.reconstructor(), benchmark, a.logger)
	engine.TopHoldings = a.cfg.Risk.TopHoldings
	engine.Window, engine.Every = a.cfg.Risk.Window, a.cfg.Risk.Every
	engine.Concurrency = a.cfg.Concurrency

	res, err := engine.Compute(ctx, c.account, rng)
	if err != nil {
		return exitStatus(err)
	}
	if !c.history {
		res.VolatilityHistory, res.DrawdownHistory = nil, nil
	}
	return exitStatus(output(res, renderer.RenderRisk(res, a.cfg.Currency)))
}
