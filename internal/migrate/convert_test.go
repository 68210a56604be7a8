package migrate

import (
	"math"
	"testing"
)

func TestToUpperCase(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"abc", "ABC"},
		{"Already", "ALREADY"},
		{nil, ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ToUpperCase.Apply(tc.in); got != tc.want {
			t.Errorf("toUpperCase(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestToDate(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"20250131", "2025-01-31"},
		{"19991231", "1999-12-31"},
		{"2025-01-31", "2025-01-31"}, // already canonical, unchanged
		{"31012025x", "31012025x"},
		{"", ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := ToDate.Apply(tc.in); got != tc.want {
			t.Errorf("toDate(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestToDecimal(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{"12.5", 12.5},
		{" 7 ", 7},
		{42, 42},
		{"not a number", 0},
		{nil, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tc := range cases {
		if got := ToDecimal.Apply(tc.in); got != tc.want {
			t.Errorf("toDecimal(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestToIntegerTruncatesTowardZero(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{"3.9", 3},
		{"-3.9", -3},
		{"10", 10},
		{"garbage", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := ToInteger.Apply(tc.in); got != tc.want {
			t.Errorf("toInteger(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPadLeft(t *testing.T) {
	if got := PadLeft4.Apply("7"); got != "0007" {
		t.Errorf("padLeft4(7) = %v, want 0007", got)
	}
	if got := PadLeft10.Apply("123456"); got != "0000123456" {
		t.Errorf("padLeft10 = %v", got)
	}
	if got := PadLeft4.Apply("12345"); got != "12345" {
		t.Errorf("padLeft4 must not truncate, got %v", got)
	}
	if got := PadLeft5.Apply(nil); got != "00000" {
		t.Errorf("padLeft5(nil) = %v, want 00000", got)
	}
}

func TestPadAfterUpperCaseYieldsFixedWidth(t *testing.T) {
	for _, in := range []string{"a1", "ZZZ", "0", ""} {
		out := PadLeft10.Apply(ToUpperCase.Apply(in)).(string)
		if len(out) != 10 {
			t.Errorf("padLeft10(toUpperCase(%q)) = %q, want width 10", in, out)
		}
	}
}
