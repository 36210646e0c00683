// Package performance measures how an account performed over a date range:
// time-weighted return, money-weighted return (IRR), volatility and Sharpe
// ratio.
package performance

import (
	"math"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/reconstruct"
)

// PeriodsPerYear annualizes weekly statistics.
const PeriodsPerYear = 52

// Return is the return of the sub-period ending on Date, as a ratio.
type Return struct {
	Date  date.Date `json:"date"`
	Value float64   `json:"value"`
}

// Returns computes the cash-flow adjusted return of each consecutive pair of
// points: (end - start - cashflow) / start. Sub-periods starting at zero are skipped.
func Returns(series reconstruct.Series) []Return {
	var res []Return
	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1], series[i]
		if prev.Value == 0 {
			continue
		}
		res = append(res, Return{Date: curr.Date, Value: (curr.Value - prev.Value - curr.CashFlow) / prev.Value})
	}
	return res
}

// Values returns the return ratios.
func Values(returns []Return) []float64 {
	res := make([]float64, len(returns))
	for i, r := range returns {
		res[i] = r.Value
	}
	return res
}

// TimeWeightedReturn links the sub-period returns of series geometrically.
func TimeWeightedReturn(series reconstruct.Series) analytics.Percent {
	growth := 1.0
	for _, r := range Returns(series) {
		growth *= 1 + r.Value
	}
	return analytics.Percent((growth - 1) * 100)
}

// Volatility is the annualized sample standard deviation of weekly returns.
// It is zero when there are fewer than two returns.
func Volatility(returns []float64) analytics.Percent {
	sd, ok := StdDev(returns)
	if !ok {
		return 0
	}
	return analytics.Percent(sd * math.Sqrt(PeriodsPerYear) * 100)
}

// StdDev is the sample standard deviation (n-1 denominator). ok is false
// with fewer than two values.
func StdDev(values []float64) (sd float64, ok bool) {
	n := len(values)
	if n < 2 {
		return 0, false
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(n-1)), true
}

// Mean is the arithmetic mean, zero for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SharpeRatio is (portfolioReturn - riskFreeRate) / volatility, all in
// percent. It is zero when volatility is zero.
func SharpeRatio(portfolioReturn, riskFreeRate, volatility analytics.Percent) float64 {
	if volatility == 0 {
		return 0
	}
	return float64(portfolioReturn-riskFreeRate) / float64(volatility)
}
