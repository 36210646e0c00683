// Package risk measures the risk taken by an account: beta against a market
// proxy, drawdowns, rolling volatility and the correlation of its holdings.
package risk

import (
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/performance"
	"github.com/etnz/analytics/reconstruct"
)

// Point is a dated metric, in percent.
type Point struct {
	Date  date.Date `json:"date"`
	Value float64   `json:"value"`
}

// Drawdown is the deepest decline from a running peak.
type Drawdown struct {
	Percent float64   `json:"percent"` // <= 0
	Peak    date.Date `json:"peak"`
	Trough  date.Date `json:"trough"`
}

// Beta is cov(portfolio, market) / var(market) over returns paired by date.
// It is 1 with fewer than two pairs or a flat market.
func Beta(portfolio, market []performance.Return) float64 {
	byDate := make(map[date.Date]float64, len(market))
	for _, r := range market {
		byDate[r.Date] = r.Value
	}
	var p, m []float64
	for _, r := range portfolio {
		if v, ok := byDate[r.Date]; ok {
			p = append(p, r.Value)
			m = append(m, v)
		}
	}
	if len(p) < 2 {
		return 1
	}
	variance := covariance(m, m)
	if variance == 0 {
		return 1
	}
	return covariance(p, m) / variance
}

// covariance is the sample covariance of two series of the same length.
func covariance(a, b []float64) float64 {
	ma, mb := performance.Mean(a), performance.Mean(b)
	var sum float64
	for i := range a {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(len(a)-1)
}

// Correlation is the Pearson correlation of a and b. It is 0 when the
// lengths differ, with fewer than two values, or when either is flat.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	sa, _ := performance.StdDev(a)
	sb, _ := performance.StdDev(b)
	if sa == 0 || sb == 0 {
		return 0
	}
	return covariance(a, b) / (sa * sb)
}

// MaxDrawdown walks the series once, tracking the running peak. It returns
// the deepest drawdown and the drawdown of every point.
func MaxDrawdown(series reconstruct.Series) (Drawdown, []Point) {
	if len(series) == 0 {
		return Drawdown{}, nil
	}
	peak, peakDate := series[0].Value, series[0].Date
	worst := Drawdown{Peak: peakDate, Trough: peakDate}
	history := make([]Point, 0, len(series))
	for _, p := range series {
		if p.Value > peak {
			peak, peakDate = p.Value, p.Date
		}
		var dd float64
		if peak > 0 {
			dd = (p.Value - peak) / peak * 100
		}
		history = append(history, Point{Date: p.Date, Value: dd})
		if dd < worst.Percent {
			worst = Drawdown{Percent: dd, Peak: peakDate, Trough: p.Date}
		}
	}
	return worst, history
}

// RollingVolatility computes the annualized volatility of windows of
// `window` days, one window ending every `every` days. A range shorter than
// one window yields a single window over the whole series.
func RollingVolatility(series reconstruct.Series, window, every int) []Point {
	if len(series) < 2 || window <= 0 || every <= 0 {
		return nil
	}
	first, last := series.First().Date, series.Last().Date
	end := first.Add(window)
	if end.After(last) {
		end = last
	}
	var res []Point
	for ; !end.After(last); end = end.Add(every) {
		sub := series.Between(date.Range{From: end.Add(-window), To: end})
		vol := performance.Volatility(performance.Values(performance.Returns(sub)))
		res = append(res, Point{Date: end, Value: float64(vol)})
	}
	return res
}
