package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/cache"
	"github.com/etnz/analytics/config"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/eodhd"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// fetchCmd holds the flags for the 'fetch' subcommand.
type fetchCmd struct {
	symbol  string
	ticker  string
	start   string
	end     string
	holding string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "download daily prices and splits from eodhd.com" }
func (*fetchCmd) Usage() string {
	return `fin fetch -symbol <symbol> [-ticker <eodhd ticker>] [-s <date>] [-d <date>] [-holding <id>]

  Adds the daily prices of a symbol to the configured store.
  With -holding, the splits of the period are also recorded in that holding's ledger.
  The API token is read from the configuration (eodhd.token) or $EODHD_API_KEY.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Symbol the prices belong to")
	f.StringVar(&c.ticker, "ticker", "", "EODHD ticker, <symbol>.US by default")
	f.StringVar(&c.start, "s", date.Today().Add(-365).String(), "First day to fetch")
	f.StringVar(&c.end, "d", date.Today().String(), "Last day to fetch")
	f.StringVar(&c.holding, "holding", "", "Holding receiving the split entries")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "-symbol is required")
		return subcommands.ExitUsageError
	}
	rng, err := parseRange(c.start, c.end, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing the period: %v\n", err)
		return subcommands.ExitUsageError
	}
	ticker := c.ticker
	if ticker == "" {
		ticker = c.symbol + ".US"
	}

	cfg, err := loadConfig()
	if err != nil {
		return exitStatus(err)
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return exitStatus(err)
	}
	defer logger.Sync()

	client := newEODHD(cfg, logger)
	points, err := client.Prices(ctx, ticker, c.symbol, rng)
	if err != nil {
		return exitStatus(err)
	}
	var entries []analytics.Entry
	if c.holding != "" {
		splits, err := client.Splits(ctx, ticker, rng)
		if err != nil {
			return exitStatus(err)
		}
		entries = eodhd.SplitEntries(c.holding, splits)
	}

	if err := save(ctx, cfg.Store.Path, cfg.Store.Kind(), points, entries); err != nil {
		return exitStatus(err)
	}
	fmt.Printf("Added %d prices and %d splits of %s to %s\n", len(points), len(entries), c.symbol, cfg.Store.Path)
	return subcommands.ExitSuccess
}

// newEODHD returns an EODHD client whose responses are cached for the configured TTL.
func newEODHD(cfg *config.Config, logger *zap.Logger) *eodhd.Client {
	token := cfg.EODHD.Token
	if token == "" {
		token = os.Getenv(eodhd.EnvToken)
	}
	client := eodhd.New(token, cache.NewClient(newCache(cfg), cfg.Cache.TTL, logger), logger)
	client.BaseURL = cfg.EODHD.BaseURL
	return client
}
