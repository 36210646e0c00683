package analytics

import (
	"encoding/json"
	"testing"

	"github.com/etnz/analytics/date"
)

func TestParseEntryType(t *testing.T) {
	for typ, name := range entryTypeNames {
		got, err := ParseEntryType(name)
		if err != nil {
			t.Fatalf("ParseEntryType(%q) error = %v", name, err)
		}
		if got != typ {
			t.Errorf("ParseEntryType(%q) = %v, want %v", name, got, typ)
		}
	}
	if _, err := ParseEntryType("gift"); err == nil {
		t.Error(`ParseEntryType("gift") error = nil, want error`)
	}
}

func TestCashFlowAmount(t *testing.T) {
	testCases := []struct {
		name  string
		entry Entry
		want  float64
	}{
		{"buy uses amount", Entry{Type: Buy, Amount: USD(1000)}, 1000},
		{"buy falls back to quantity price", Entry{Type: Buy, Quantity: Q(10), Price: USD(12.5)}, 125},
		{"negative sell quantity", Entry{Type: Sell, Quantity: Q(-4), Price: USD(25)}, -100},
		{"deposit", Entry{Type: Deposit, Amount: USD(50)}, 50},
		{"dividend is an outflow", Entry{Type: Dividend, Amount: USD(7)}, -7},
		{"withdrawal", Entry{Type: Withdrawal, Amount: USD(-30)}, -30},
		{"fee is not external", Entry{Type: Fee, Amount: USD(3)}, 0},
		{"split is not external", Entry{Type: Split, Ratio: Q(2)}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CashFlowAmount(tc.entry); got != tc.want {
				t.Errorf("CashFlowAmount() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSortEntries(t *testing.T) {
	d1, d2 := date.New(2025, 1, 1), date.New(2025, 1, 2)
	entries := []Entry{
		{ID: "c", Date: d2},
		{ID: "a", Date: d1},
		{ID: "d", Date: d2},
		{ID: "b", Date: d1},
	}
	SortEntries(entries)
	var got string
	for _, e := range entries {
		got += e.ID
	}
	if got != "abcd" {
		t.Errorf("SortEntries() order = %q, want %q", got, "abcd")
	}
}

func TestEntryJSON(t *testing.T) {
	in := Entry{ID: "1", HoldingID: "h", Type: InitialBalance, Date: date.New(2025, 3, 1), Quantity: Q(3), Price: USD(10)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out Entry
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	if out.Type != in.Type || out.Date != in.Date || !out.Quantity.Equal(in.Quantity) || !out.Price.Equal(in.Price) {
		t.Errorf("Unmarshal(%s) = %+v, want %+v", data, out, in)
	}
}
