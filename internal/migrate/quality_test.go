package migrate

import (
	"testing"

	"github.com/s4bridge/s4bridge/internal/adapter"
)

func TestRequiredCheck(t *testing.T) {
	q := QualityChecks{Required: []string{"Name", "Amount"}}
	rows := []adapter.Row{
		{"Name": "ok", "Amount": float64(10)},
		{"Name": "", "Amount": float64(0)},
		{"Amount": float64(5)},
	}

	violations := q.Validate(rows)
	if len(violations) != 2 {
		t.Fatalf("violations = %v, want 2", violations)
	}
	if violations[0].Row != 1 || violations[0].Field != "Name" {
		t.Errorf("first violation = %+v, want empty Name in row 1", violations[0])
	}
	if violations[1].Row != 2 {
		t.Errorf("second violation = %+v, want missing Name in row 2", violations[1])
	}
}

func TestRequiredAcceptsZeroNumbers(t *testing.T) {
	q := QualityChecks{Required: []string{"Amount"}}
	rows := []adapter.Row{{"Amount": float64(0)}, {"Amount": 0}}
	if v := q.Validate(rows); len(v) != 0 {
		t.Errorf("numeric zero flagged: %v", v)
	}
}

func TestExactDuplicateCheck(t *testing.T) {
	q := QualityChecks{ExactDuplicate: &DuplicateCheck{Keys: []string{"CompanyCode", "Account"}}}
	rows := []adapter.Row{
		{"CompanyCode": "1000", "Account": "100000"},
		{"CompanyCode": "1000", "Account": "200000"},
		{"CompanyCode": "1000", "Account": "100000"}, // dup of row 0
	}

	violations := q.Validate(rows)
	if len(violations) != 1 || violations[0].Row != 2 {
		t.Fatalf("violations = %v, want one at row 2", violations)
	}
}

func TestFuzzyDuplicateCheck(t *testing.T) {
	q := QualityChecks{FuzzyDuplicate: &FuzzyCheck{Keys: []string{"Name"}, Threshold: 0.8}}
	rows := []adapter.Row{
		{"Name": "Acme Industries"},
		{"Name": "Acme Industrie"}, // one deletion away
		{"Name": "Completely Different"},
	}

	violations := q.Validate(rows)
	if len(violations) != 1 {
		t.Fatalf("violations = %v, want 1", violations)
	}
	if violations[0].Row != 1 {
		t.Errorf("flagged row = %d, want 1", violations[0].Row)
	}
}

func TestFuzzyFlagsIdenticalKeys(t *testing.T) {
	// Identical keys have similarity 1, which is always >= the
	// threshold, so the fuzzy check flags them even when no exact
	// duplicate check is configured on the object.
	q := QualityChecks{FuzzyDuplicate: &FuzzyCheck{Keys: []string{"Name"}, Threshold: 0.9}}
	rows := []adapter.Row{{"Name": "Acme GmbH"}, {"Name": "Acme GmbH"}}

	violations := q.Validate(rows)
	if len(violations) != 1 {
		t.Fatalf("violations = %v, want 1", violations)
	}
	if violations[0].Check != "fuzzyDuplicate" || violations[0].Row != 1 {
		t.Errorf("violation = %+v, want fuzzyDuplicate at row 1", violations[0])
	}
}

func TestRangeCheckInclusive(t *testing.T) {
	q := QualityChecks{Range: []RangeCheck{{Field: "Qty", Min: 0, Max: 100}}}
	rows := []adapter.Row{
		{"Qty": float64(0)},   // lower bound, allowed
		{"Qty": float64(100)}, // upper bound, allowed
		{"Qty": float64(101)},
		{"Qty": float64(-1)},
		{}, // absent, not checked
	}

	violations := q.Validate(rows)
	if len(violations) != 2 {
		t.Fatalf("violations = %v, want 2", violations)
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"same", "same", 1},
		{"", "abc", 0},
		{"abcd", "abce", 0.75},
	}
	for _, tc := range cases {
		if got := similarity(tc.a, tc.b); got != tc.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"flaw", "lawn", 2},
	}
	for _, tc := range cases {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
