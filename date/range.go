package date

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyRange is returned when a range ends before it starts.
var ErrEmptyRange = errors.New("empty date range")

// Range represents a range of dates.
type Range struct{ From, To Date }

// NewRange return a well known period
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Until returns the range from the zero date up to and including d.
func Until(d Date) Range { return Range{To: d} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days between From and To.
func (r Range) Days() int { return r.To.Sub(r.From) }

// Validate returns ErrEmptyRange when To is before From.
func (r Range) Validate() error {
	if r.To.Before(r.From) {
		return fmt.Errorf("%s to %s: %w", r.From, r.To, ErrEmptyRange)
	}
	return nil
}

// Sample returns the dates From, From+step, From+2*step... up to To.
// To is always the last sample, even if it doesn't fall on a step boundary.
func (r Range) Sample(step int) []Date {
	if step <= 0 {
		step = 1
	}
	if r.To.Before(r.From) {
		return nil
	}
	dates := make([]Date, 0, r.Days()/step+2)
	for d := r.From; d.Before(r.To); d = d.Add(step) {
		dates = append(dates, d)
	}
	return append(dates, r.To)
}

// Weekly returns the weekly samples of the range.
func (r Range) Weekly() []Date { return r.Sample(7) }

// return the period of this range if it's a standard one.
func (r Range) Period() (p Period, ok bool) {
	switch {
	case r.From == r.To:
		return Daily, true
	case r.From.Weekday() == time.Monday && r.From.EndOf(Weekly) == r.To:
		return Weekly, true
	case r.From.Day() == 1 && r.From.EndOf(Monthly) == r.To:
		return Monthly, true
	case r.From.StartOf(Quarterly) == r.From && r.From.EndOf(Quarterly) == r.To:
		return Quarterly, true
	case r.From.StartOf(Yearly) == r.From && r.From.EndOf(Yearly) == r.To:
		return Yearly, true
	default:
		return Daily, false
	}
}

// Name the period range
func (r Range) Name() string {
	p, ok := r.Period()
	if ok {
		return p.String()
	}
	return "special"
}

// Identifier compute a unique identifier for the Range.
// If the period is defined, use a short insighful name
func (r Range) Identifier() string {
	p, ok := r.Period()
	if !ok {
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}

	switch p {
	case Daily:
		return r.From.String()
	case Weekly:
		_, week := r.From.ISOWeek()
		return fmt.Sprintf("%d-W%02d", r.From.Year(), week)
	case Monthly:
		return r.From.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case Yearly:
		return r.From.Format("2006")
	default:
		panic("unknown period")
	}
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
