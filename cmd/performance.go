package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/performance"
	"github.com/etnz/analytics/renderer"
	"github.com/google/subcommands"
)

// performanceCmd holds the flags for the 'performance' subcommand.
type performanceCmd struct {
	accounts string
	period   string
	start    string
	end      string
	series   bool
}

func (*performanceCmd) Name() string { return "performance" }
func (*performanceCmd) Synopsis() string {
	return "time and money weighted returns, volatility and Sharpe ratio"
}
func (*performanceCmd) Usage() string {
	return `fin performance -a <account>[,<account>...] [-period <period>] [-s <date>] [-d <date>] [-series]

  Reconstructs the weekly value of each account and measures its performance.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.accounts, "a", "", "Comma separated list of accounts")
	f.StringVar(&c.period, "period", date.Yearly.String(), "Predefined period (daily, weekly, monthly, quarterly, yearly)")
	f.StringVar(&c.start, "s", "", "Start date of the reporting period, overrides -period")
	f.StringVar(&c.end, "d", date.Today().String(), "End date of the reporting period")
	f.BoolVar(&c.series, "series", false, "Include the valuation series in the report")
}

func (c *performanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ids := accounts(c.accounts)
	if len(ids) == 0 {
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

	engine := performance.NewEngine(a.reconstructor(), a.logger)
	engine.RiskFreeRate = analytics.Percent(a.cfg.Performance.RiskFreeRate)
	engine.Concurrency = a.cfg.Concurrency

	results, err := engine.ComputeAll(ctx, ids, rng)
	if err != nil {
		return exitStatus(err)
	}

	var md strings.Builder
	for _, res := range results {
		if !c.series {
			res.Series = nil
		}
		md.WriteString(renderer.RenderPerformance(res, a.cfg.Currency))
		md.WriteString("\n")
	}
	return exitStatus(output(results, md.String()))
}
