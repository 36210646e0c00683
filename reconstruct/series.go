package reconstruct

import "github.com/etnz/analytics/date"

// Point is one sampled valuation. CashFlow is the external cash flow between
// the previous point (excluded) and this one (included).
type Point struct {
	Date     date.Date `json:"date"`
	Value    float64   `json:"value"`
	CashFlow float64   `json:"cash_flow,omitempty"`
}

// Series is a chronological list of points.
type Series []Point

// Values returns the values of the series.
func (s Series) Values() []float64 {
	res := make([]float64, len(s))
	for i, p := range s {
		res[i] = p.Value
	}
	return res
}

// Between returns the points dated within r.
func (s Series) Between(r date.Range) Series {
	var res Series
	for _, p := range s {
		if r.Contains(p.Date) {
			res = append(res, p)
		}
	}
	return res
}

// First returns the first point, or the zero point.
func (s Series) First() Point {
	if len(s) == 0 {
		return Point{}
	}
	return s[0]
}

// Last returns the last point, or the zero point.
func (s Series) Last() Point {
	if len(s) == 0 {
		return Point{}
	}
	return s[len(s)-1]
}
