package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/cache"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/reconstruct"
	"go.uber.org/zap"
)

// DefaultBenchmark is the broad market proxy.
const DefaultBenchmark = "SPY"

// Benchmark reads the price series of a market proxy through a cache.
// Cache failures are logged and fall through to the price reader.
type Benchmark struct {
	Symbol string
	TTL    time.Duration

	prices analytics.PriceReader
	cache  cache.Store
	logger *zap.Logger
}

// NewBenchmark returns a benchmark on symbol. A nil store disables caching.
func NewBenchmark(symbol string, prices analytics.PriceReader, store cache.Store, ttl time.Duration, logger *zap.Logger) *Benchmark {
	if logger == nil {
		logger = zap.NewNop()
	}
	if symbol == "" {
		symbol = DefaultBenchmark
	}
	return &Benchmark{Symbol: symbol, TTL: ttl, prices: prices, cache: store, logger: logger}
}

func (b *Benchmark) key(dates []date.Date) string {
	if len(dates) == 0 {
		return "benchmark:" + b.Symbol
	}
	return fmt.Sprintf("benchmark:%s:%s:%s:%d", b.Symbol, dates[0], dates[len(dates)-1], len(dates))
}

// Series returns the close prices of the benchmark on each date.
func (b *Benchmark) Series(ctx context.Context, dates []date.Date) (reconstruct.Series, error) {
	key := b.key(dates)
	if b.cache != nil {
		data, found, err := b.cache.Get(ctx, key)
		switch {
		case err != nil:
			b.logger.Warn("benchmark cache read failed", zap.String("key", key), zap.Error(err))
		case found:
			var s reconstruct.Series
			if err := json.Unmarshal(data, &s); err == nil {
				return s, nil
			}
			b.logger.Warn("benchmark cache entry is corrupted", zap.String("key", key))
		}
	}

	s, err := reconstruct.PriceSeries(ctx, b.prices, b.Symbol, dates)
	if err != nil {
		return nil, err
	}
	if b.cache != nil {
		data, err := json.Marshal(s)
		if err == nil {
			err = b.cache.Set(ctx, key, data, b.TTL)
		}
		if err != nil {
			b.logger.Warn("benchmark cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return s, nil
}
