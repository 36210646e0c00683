package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/store"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

// pricesCmd holds the flags for the 'prices' subcommand.
type pricesCmd struct {
	symbol string
	file   string
	format string
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "import daily prices from a provider JSON document" }
func (*pricesCmd) Usage() string {
	return `fin prices -symbol <symbol> -file <prices.json> [-format eodhd|<format.yaml>]

  Adds the daily prices of a symbol to the configured store.
  A format file is a YAML document of JSONPath expressions:

    rows: $.data[*]
    date: date
    close: close
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Symbol the prices belong to")
	f.StringVar(&c.file, "file", "", "JSON document to read, stdin when empty")
	f.StringVar(&c.format, "format", "eodhd", "Provider format: eodhd or the path to a YAML format file")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "-symbol is required")
		return subcommands.ExitUsageError
	}
	format, err := loadPriceFormat(c.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading format: %v\n", err)
		return subcommands.ExitUsageError
	}

	in := os.Stdin
	if c.file != "" {
		if in, err = os.Open(c.file); err != nil {
			return exitStatus(err)
		}
		defer in.Close()
	}
	points, err := store.ImportPrices(in, c.symbol, format)
	if err != nil {
		return exitStatus(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return exitStatus(err)
	}
	if err := save(ctx, cfg.Store.Path, cfg.Store.Kind(), points, nil); err != nil {
		return exitStatus(err)
	}
	fmt.Printf("Added %d prices of %s to %s\n", len(points), c.symbol, cfg.Store.Path)
	return subcommands.ExitSuccess
}

func loadPriceFormat(name string) (store.PriceFormat, error) {
	if name == "eodhd" {
		return store.EODHD, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return store.PriceFormat{}, err
	}
	var format store.PriceFormat
	if err := yaml.Unmarshal(data, &format); err != nil {
		return store.PriceFormat{}, fmt.Errorf("could not parse %q: %w", name, err)
	}
	return format, nil
}

// save adds points and entries to the store at path. A JSONL dataset is
// rewritten in place, a missing one is created.
func save(ctx context.Context, path, kind string, points []analytics.PricePoint, entries []analytics.Entry) error {
	if kind == "sqlite" {
		db, err := store.OpenSQLite(path)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.InsertPrices(ctx, points...); err != nil {
			return err
		}
		return db.InsertEntries(ctx, entries...)
	}

	m, err := decodeDataset(path)
	if errors.Is(err, fs.ErrNotExist) {
		m, err = store.NewMemory(), nil
	}
	if err != nil {
		return err
	}
	m.AddPrices(points...)
	m.AddEntries(entries...)

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("could not write dataset %q: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if err := store.EncodeDataset(tmp, m); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
