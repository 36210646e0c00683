package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/amortization"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/renderer"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// amortizeCmd holds the flags for the 'amortize' subcommand.
type amortizeCmd struct {
	principal float64
	rate      float64
	term      int
	payment   float64
	start     string

	user  string
	debt  string
	extra float64
}

func (*amortizeCmd) Name() string { return "amortize" }
func (*amortizeCmd) Synopsis() string {
	return "amortization schedule of a loan, or progress of a recorded debt"
}
func (*amortizeCmd) Usage() string {
	return `fin amortize -principal <amount> -rate <percent> -term <months> [-payment <amount>] [-d <date>]
fin amortize -u <user> -debt <id> [-extra <amount>] [-d <date>]

  The first form prints the full schedule of a fixed-rate loan.
  The second form summarizes a recorded debt on a date and, with -extra,
  compares its payoff at the minimum payment and with an extra monthly payment.
`
}

func (c *amortizeCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.principal, "principal", 0, "Loan principal")
	f.Float64Var(&c.rate, "rate", 0, "Annual interest rate in percent")
	f.IntVar(&c.term, "term", 0, "Loan term in months")
	f.Float64Var(&c.payment, "payment", 0, "Monthly payment, the amortizing payment when 0")
	f.StringVar(&c.start, "d", date.Today().String(), "Start date of the loan, or date of the debt summary")

	f.StringVar(&c.user, "u", "", "Owner of the recorded debt")
	f.StringVar(&c.debt, "debt", "", "Id of the recorded debt")
	f.Float64Var(&c.extra, "extra", 0, "Extra monthly payment to compare with")
}

func (c *amortizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.debt != "" {
		return exitStatus(c.summarize(ctx, on))
	}
	if c.principal == 0 || c.term == 0 {
		fmt.Fprintln(os.Stderr, "either -principal and -term, or -debt is required")
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		return exitStatus(err)
	}
	s, err := amortization.Generate(amortization.Loan{
		Principal:         c.principal,
		AnnualRatePercent: c.rate,
		TermMonths:        c.term,
		Payment:           c.payment,
		Start:             on,
	})
	if err != nil {
		return exitStatus(err)
	}
	return exitStatus(output(s, renderer.RenderSchedule(s, cfg.Currency)))
}

// debtReport is the JSON output of a recorded debt.
type debtReport struct {
	Summary *amortization.Summary    `json:"summary,omitempty"`
	Extra   *amortization.Comparison `json:"extra,omitempty"`
}

func (c *amortizeCmd) summarize(ctx context.Context, on date.Date) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	debts, err := a.src.Debts(ctx, c.user)
	if err != nil {
		return fmt.Errorf("could not read debts of %q: %w", c.user, err)
	}
	var d *analytics.Debt
	for i := range debts {
		if debts[i].ID == c.debt {
			d = &debts[i]
		}
	}
	if d == nil {
		return fmt.Errorf("debt %q of %q: %w", c.debt, c.user, analytics.ErrNotFound)
	}

	var (
		report debtReport
		md     strings.Builder
	)
	s, err := amortization.Summarize(*d, on)
	switch {
	case errors.Is(err, analytics.ErrInvalidInput) && c.extra > 0:
		// revolving debts have no schedule, the comparison still applies
		a.logger.Debug("no loan summary", zap.String("debt", d.ID), zap.Error(err))
	case err != nil:
		return err
	default:
		report.Summary = &s
		md.WriteString(renderer.RenderLoanSummary(&s, a.cfg.Currency))
	}
	if c.extra > 0 {
		cmp, err := amortization.CompareExtraPayment(*d, c.extra, on)
		if err != nil {
			return err
		}
		report.Extra = &cmp
		md.WriteString("\n")
		md.WriteString(renderer.RenderExtraPayment(&cmp, a.cfg.Currency))
	}
	return output(report, md.String())
}
