package migrate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Converter is a named, total value conversion. Conversions never fail:
// absent or unparseable input yields the documented zero ("" for string
// conversions, 0 for numeric ones).
type Converter struct {
	Name string
	fn   func(any) any
}

// Apply runs the conversion.
func (c Converter) Apply(v any) any { return c.fn(v) }

var (
	// ToUpperCase upper-cases the string form, locale-independent.
	ToUpperCase = Converter{Name: "toUpperCase", fn: func(v any) any {
		return strings.ToUpper(asString(v))
	}}

	// ToDate canonicalizes YYYYMMDD to YYYY-MM-DD; anything else passes
	// through unchanged.
	ToDate = Converter{Name: "toDate", fn: func(v any) any {
		s := asString(v)
		if len(s) != 8 || !allDigits(s) {
			return s
		}
		return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
	}}

	// ToDecimal parses to a finite float; non-finite or unparseable is 0.
	ToDecimal = Converter{Name: "toDecimal", fn: func(v any) any {
		return toFloat(v)
	}}

	// ToInteger parses then truncates toward zero.
	ToInteger = Converter{Name: "toInteger", fn: func(v any) any {
		return int64(math.Trunc(toFloat(v)))
	}}

	PadLeft4  = padLeft(4)
	PadLeft5  = padLeft(5)
	PadLeft10 = padLeft(10)
	PadLeft40 = padLeft(40)
)

func padLeft(width int) Converter {
	return Converter{
		Name: fmt.Sprintf("padLeft%d", width),
		fn: func(v any) any {
			s := asString(v)
			if len(s) >= width {
				return s
			}
			return strings.Repeat("0", width-len(s)) + s
		},
	}
}

// asString renders a value for string conversions; nil is "".
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
