package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/payoff"
	"github.com/etnz/analytics/renderer"
	"github.com/google/subcommands"
)

// payoffCmd holds the flags for the 'payoff' subcommand.
type payoffCmd struct {
	user     string
	extra    float64
	start    string
	timeline bool
}

func (*payoffCmd) Name() string { return "payoff" }
func (*payoffCmd) Synopsis() string {
	return "compare avalanche, snowball and minimum-only debt payoff strategies"
}
func (*payoffCmd) Usage() string {
	return `fin payoff -u <user> [-extra <amount>] [-d <date>] [-timeline]

  Simulates paying off every debt of a user, month by month, with each strategy.
`
}

func (c *payoffCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Owner of the debts")
	f.Float64Var(&c.extra, "extra", 0, "Extra amount paid every month on top of the minimums")
	f.StringVar(&c.start, "d", date.Today().String(), "Start date of the simulation")
	f.BoolVar(&c.timeline, "timeline", false, "Keep the monthly timeline in the JSON output")
}

func (c *payoffCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "-u is required")
		return subcommands.ExitUsageError
	}
	start, err := date.Parse(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		return exitStatus(err)
	}
	defer a.Close()

	cmp, err := payoff.NewPlanner(a.src, a.logger).Compare(ctx, c.user, c.extra, start)
	if err != nil {
		return exitStatus(err)
	}
	if !c.timeline {
		for i := range cmp.Plans {
			cmp.Plans[i].Timeline = nil
		}
	}
	return exitStatus(output(cmp, renderer.RenderPayoff(cmp, a.cfg.Currency)))
}
