// Package cmd implements the fin CLI: financial analytics over a dataset.
package cmd

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/analytics"
	"github.com/etnz/analytics/cache"
	"github.com/etnz/analytics/config"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/reconstruct"
	"github.com/etnz/analytics/store"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&performanceCmd{}, "portfolio")
	c.Register(&riskCmd{}, "portfolio")
	c.Register(&taxCmd{}, "portfolio")

	c.Register(&amortizeCmd{}, "debts")
	c.Register(&payoffCmd{}, "debts")

	c.Register(&importCmd{}, "data")
	c.Register(&pricesCmd{}, "data")
	c.Register(&fetchCmd{}, "data")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", os.Getenv(EnvConfigFile), "Path to the configuration file (YAML or JSON)")
	storePath  = flag.String("store", "", "Path to the dataset: a .jsonl file or a SQLite .db, overrides the configuration")
	currency   = flag.String("currency", "", "Reporting currency, overrides the configuration")
	Verbose    = flag.Bool("v", false, "Enable debug logs")
	jsonOutput = flag.Bool("json", false, "Print results as JSON instead of markdown")
)

// app is what every command needs: the configuration, a logger and the dataset.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	src    analytics.Source
	close  func() error
}

// loadConfig reads .env, the configuration file and the global flags.
func loadConfig() (*config.Config, error) {
	// a missing .env is the common case
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		return nil, err
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *currency != "" {
		cfg.Currency = *currency
	}
	if *Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openApp loads the configuration and opens the dataset. Callers must call a.Close.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("could not create logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, close: func() error { return nil }}

	switch cfg.Store.Kind() {
	case "sqlite":
		db, err := store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.src, a.close = db, db.Close
	default:
		m, err := decodeDataset(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.src = m
	}
	logger.Debug("dataset opened", zap.String("path", cfg.Store.Path), zap.String("kind", cfg.Store.Kind()))
	return a, nil
}

func (a *app) Close() error {
	_ = a.logger.Sync()
	return a.close()
}

// newCache returns the cache described by the configuration.
func newCache(cfg *config.Config) cache.Store {
	if cfg.Cache.RedisAddr != "" {
		return cache.NewRedisStore(&redis.Options{Addr: cfg.Cache.RedisAddr}, cfg.Cache.RedisPrefix)
	}
	return cache.NewMemoryStore(cfg.Cache.MaxEntries)
}

func decodeDataset(path string) (*store.Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset %q: %w", path, err)
	}
	defer f.Close()
	m, err := store.DecodeDataset(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode dataset %q: %w", path, err)
	}
	return m, nil
}

// parseRange returns the reporting range: [from, to] when from is set,
// otherwise from the start of the period containing to, up to to.
func parseRange(from, to, period string) (date.Range, error) {
	end, err := date.Parse(to)
	if err != nil {
		return date.Range{}, err
	}
	if from != "" {
		start, err := date.Parse(from)
		if err != nil {
			return date.Range{}, err
		}
		rng := date.Range{From: start, To: end}
		return rng, rng.Validate()
	}
	p, err := date.ParsePeriod(period)
	if err != nil {
		return date.Range{}, err
	}
	rng := p.Range(end)
	rng.To = end
	return rng, nil
}

// exitStatus reports err on stderr. Invalid inputs are usage errors.
func exitStatus(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, analytics.ErrInvalidInput) || errors.Is(err, date.ErrEmptyRange) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// output prints v as JSON when -json is set, md otherwise.
func output(v any, md string) error {
	if *jsonOutput {
		return writeJSON(os.Stdout, v)
	}
	printMarkdown(md)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMarkdown renders md for the terminal, falling back to the raw markdown.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// reconstructor returns the account reconstructor configured for a.
func (a *app) reconstructor() *reconstruct.Reconstructor {
	r := reconstruct.New(a.src, a.logger)
	r.Tolerance = a.cfg.Performance.Tolerance
	r.Step = a.cfg.Performance.StepDays
	return r
}

// accounts splits a comma separated list of account ids.
func accounts(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
