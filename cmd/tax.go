package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/renderer"
	"github.com/etnz/analytics/tax"
	"github.com/google/subcommands"
)

// taxCmd holds the flags for the 'tax' subcommand.
type taxCmd struct {
	account string
	on      string
}

func (*taxCmd) Name() string { return "tax" }
func (*taxCmd) Synopsis() string {
	return "unrealized gains by term, harvesting opportunities and estimated tax"
}
func (*taxCmd) Usage() string {
	return `fin tax -a <account> [-d <date>]

  Classifies each holding short or long term and lists tax-loss harvesting opportunities.
  Rates and threshold come from the configuration (tax section).
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account to analyze")
	f.StringVar(&c.on, "d", date.Today().String(), "Date of the analysis")
}

func (c *taxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "-a is required")
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		return exitStatus(err)
	}
	defer a.Close()

	res, err := tax.NewAnalyzer(a.src, a.cfg.Tax, a.logger).Analyze(ctx, c.account, on)
	if err != nil {
		return exitStatus(err)
	}
	return exitStatus(output(res, renderer.RenderTax(res, a.cfg.Currency)))
}
