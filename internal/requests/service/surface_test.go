package service

import (
	"math"
	"strconv"
	"testing"
)

func TestParseSurfaceArea(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{"float", 120.5, 120.5, true},
		{"int", 45, 45, true},
		{"plain string", "120", 120, true},
		{"string with unit", "120 m2", 120, true},
		{"decimal comma", "85,5", 85.5, true},
		{"european grouping", "1.234,56", 1234.56, true},
		{"anglo grouping", "1,234.56", 1234.56, true},
		{"spaced grouping", "1 200", 1200, true},
		{"text around number", "environ 80 m²", 80, true},
		{"empty string", "", 0, false},
		{"no digits", "je ne sais pas", 0, false},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"bool", true, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseSurfaceArea(tc.value)
			if ok != tc.ok {
				t.Fatalf("ParseSurfaceArea(%v) ok = %v, want %v", tc.value, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("ParseSurfaceArea(%v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestParseSurfaceAreaReparseIsStable(t *testing.T) {
	inputs := []string{"120 m2", "85,5", "1.234,56", "1,234.56", "environ 80 m²"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, ok := ParseSurfaceArea(input)
			if !ok {
				t.Fatalf("ParseSurfaceArea(%q) should parse", input)
			}
			again, ok := ParseSurfaceArea(strconv.FormatFloat(first, 'f', -1, 64))
			if !ok || again != first {
				t.Fatalf("re-parsing %v yielded %v (ok=%v)", first, again, ok)
			}
		})
	}
}
