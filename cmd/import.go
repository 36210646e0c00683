package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/analytics/store"
	"github.com/google/subcommands"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	from string
	to   string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "copy a JSONL dataset into a SQLite database" }
func (*importCmd) Usage() string {
	return `fin import -from <dataset.jsonl> [-to <book.db>]

  Copies holdings, ledger entries, prices and debts into a SQLite database,
  the configured store by default.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "JSONL dataset to import")
	f.StringVar(&c.to, "to", "", "SQLite database to import into, defaults to the configured store")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" {
		fmt.Fprintln(os.Stderr, "-from is required")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		return exitStatus(err)
	}
	to := c.to
	if to == "" {
		if cfg.Store.Kind() != "sqlite" {
			fmt.Fprintf(os.Stderr, "the configured store %q is not a SQLite database, use -to\n", cfg.Store.Path)
			return subcommands.ExitUsageError
		}
		to = cfg.Store.Path
	}

	m, err := decodeDataset(c.from)
	if err != nil {
		return exitStatus(err)
	}
	db, err := store.OpenSQLite(to)
	if err != nil {
		return exitStatus(err)
	}
	defer db.Close()
	if err := db.Import(ctx, m); err != nil {
		return exitStatus(fmt.Errorf("could not import %q into %q: %w", c.from, to, err))
	}
	fmt.Printf("Imported %d accounts and %d symbols into %s\n", len(m.Accounts()), len(m.Symbols()), to)
	return subcommands.ExitSuccess
}
