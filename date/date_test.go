package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestSub(t *testing.T) {
	testCases := []struct {
		a, b Date
		want int
	}{
		{New(2024, time.January, 1), New(2023, time.January, 1), 365},
		{New(2025, time.January, 1), New(2024, time.January, 1), 366}, // leap year
		{New(2024, time.March, 1), New(2024, time.March, 1), 0},
		{New(2024, time.March, 1), New(2024, time.March, 8), -7},
	}
	for _, tc := range testCases {
		if got := tc.a.Sub(tc.b); got != tc.want {
			t.Errorf("%v.Sub(%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMonthsSince(t *testing.T) {
	start := New(2024, time.January, 15)
	testCases := []struct {
		on   Date
		want int
	}{
		{New(2024, time.January, 20), 0},
		{New(2024, time.February, 14), 0},
		{New(2024, time.February, 15), 1},
		{New(2025, time.March, 1), 13},
	}
	for _, tc := range testCases {
		if got := tc.on.MonthsSince(start); got != tc.want {
			t.Errorf("%v.MonthsSince(%v) = %d, want %d", tc.on, start, got, tc.want)
		}
	}
}

func TestSample(t *testing.T) {
	r := Range{From: New(2025, time.January, 1), To: New(2025, time.January, 20)}
	got := r.Weekly()
	want := []Date{
		New(2025, time.January, 1),
		New(2025, time.January, 8),
		New(2025, time.January, 15),
		New(2025, time.January, 20), // the final date is always included.
	}
	if len(got) != len(want) {
		t.Fatalf("Weekly() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Weekly()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	t.Run("aligned end is not duplicated", func(t *testing.T) {
		r := Range{From: New(2025, time.January, 1), To: New(2025, time.January, 15)}
		if got := r.Weekly(); len(got) != 3 {
			t.Errorf("Weekly() = %v, want 3 dates", got)
		}
	})

	t.Run("empty range", func(t *testing.T) {
		r := Range{From: New(2025, time.January, 15), To: New(2025, time.January, 1)}
		if got := r.Weekly(); got != nil {
			t.Errorf("Weekly() = %v, want nil", got)
		}
		if err := r.Validate(); err == nil {
			t.Error("Validate() = nil, want ErrEmptyRange")
		}
	})
}

func TestJSON(t *testing.T) {
	type doc struct {
		On   Date `json:"on"`
		Zero Date `json:"zero"`
	}
	in := doc{On: New(2025, time.July, 1)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(data), `{"on":"2025-07-01","zero":""}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
	var out doc
	if err := json.Unmarshal([]byte(`{"on":"2025-7-1"}`), &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.On != in.On || !out.Zero.IsZero() {
		t.Errorf("Unmarshal() = %+v, want %+v", out, in)
	}
}
