package migrate

import (
	"fmt"
	"strings"

	"github.com/s4bridge/s4bridge/internal/adapter"
)

// DuplicateCheck flags rows sharing every key field with an earlier row.
type DuplicateCheck struct {
	Keys []string
}

// FuzzyCheck flags row pairs whose concatenated key values are at least
// Threshold similar (Levenshtein similarity in [0,1]).
type FuzzyCheck struct {
	Keys      []string
	Threshold float64
}

// RangeCheck enforces inclusive numeric bounds on one target field.
type RangeCheck struct {
	Field string
	Min   float64
	Max   float64
}

// QualityChecks is the validation suite declared per migration object.
type QualityChecks struct {
	Required       []string
	ExactDuplicate *DuplicateCheck
	FuzzyDuplicate *FuzzyCheck
	Range          []RangeCheck
}

// Violation is one validation finding, pointing at the offending row
// index in the transformed set.
type Violation struct {
	Check  string `json:"check"`
	Field  string `json:"field,omitempty"`
	Row    int    `json:"row"`
	Detail string `json:"detail"`
}

// Validate runs every declared check against the transformed rows.
func (q QualityChecks) Validate(rows []adapter.Row) []Violation {
	var violations []Violation
	violations = append(violations, q.checkRequired(rows)...)
	if q.ExactDuplicate != nil {
		violations = append(violations, q.checkExactDuplicates(rows)...)
	}
	if q.FuzzyDuplicate != nil {
		violations = append(violations, q.checkFuzzyDuplicates(rows)...)
	}
	violations = append(violations, q.checkRanges(rows)...)
	return violations
}

func (q QualityChecks) checkRequired(rows []adapter.Row) []Violation {
	var out []Violation
	for _, field := range q.Required {
		for i, row := range rows {
			switch v := row[field].(type) {
			case string:
				if v == "" {
					out = append(out, Violation{Check: "required", Field: field, Row: i, Detail: "empty string"})
				}
			case float64, int, int64:
				// numbers always satisfy required
			case nil:
				out = append(out, Violation{Check: "required", Field: field, Row: i, Detail: "missing"})
			default:
				out = append(out, Violation{Check: "required", Field: field, Row: i,
					Detail: fmt.Sprintf("unexpected type %T", v)})
			}
		}
	}
	return out
}

func (q QualityChecks) checkExactDuplicates(rows []adapter.Row) []Violation {
	var out []Violation
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		key := joinKeys(row, q.ExactDuplicate.Keys)
		if first, dup := seen[key]; dup {
			out = append(out, Violation{Check: "exactDuplicate", Row: i,
				Detail: fmt.Sprintf("duplicate of row %d on %s", first, strings.Join(q.ExactDuplicate.Keys, "+"))})
			continue
		}
		seen[key] = i
	}
	return out
}

func (q QualityChecks) checkFuzzyDuplicates(rows []adapter.Row) []Violation {
	var out []Violation
	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = joinKeys(row, q.FuzzyDuplicate.Keys)
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			sim := similarity(keys[i], keys[j])
			if sim >= q.FuzzyDuplicate.Threshold {
				out = append(out, Violation{Check: "fuzzyDuplicate", Row: j,
					Detail: fmt.Sprintf("%.2f similar to row %d", sim, i)})
			}
		}
	}
	return out
}

func (q QualityChecks) checkRanges(rows []adapter.Row) []Violation {
	var out []Violation
	for _, rc := range q.Range {
		for i, row := range rows {
			if row[rc.Field] == nil {
				continue
			}
			v := toFloat(row[rc.Field])
			if v < rc.Min || v > rc.Max {
				out = append(out, Violation{Check: "range", Field: rc.Field, Row: i,
					Detail: fmt.Sprintf("%v outside [%v, %v]", v, rc.Min, rc.Max)})
			}
		}
	}
	return out
}

func joinKeys(row adapter.Row, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = asString(row[k])
	}
	return strings.Join(parts, "\x1f")
}

// similarity is 1 - levenshtein/maxLen; identical strings score 1,
// disjoint strings approach 0.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	dist := levenshtein(a, b)
	max := la
	if lb > max {
		max = lb
	}
	return 1 - float64(dist)/float64(max)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
