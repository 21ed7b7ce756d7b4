package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRun matches the first contiguous run of digits and separators in a
// free-text surface value ("120 m2", "1.234,56 m²").
var numericRun = regexp.MustCompile(`[0-9.,]+`)

// ParseSurfaceArea normalizes a surface value of unknown shape into a
// finite float. ok=false means no usable value, which is distinct from 0.
//
// Separator disambiguation: when both "," and "." appear, the rightmost one
// is the decimal point and the other is a thousands separator; a lone ","
// is a decimal point; otherwise "," is stripped as grouping.
func ParseSurfaceArea(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return parseSurfaceString(v)
	default:
		return 0, false
	}
}

func parseSurfaceString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")

	run := numericRun.FindString(s)
	if run == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(run, ",")
	lastDot := strings.LastIndex(run, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			run = strings.ReplaceAll(run, ".", "")
			run = strings.Replace(run, ",", ".", 1)
		} else {
			run = strings.ReplaceAll(run, ",", "")
		}
	case lastComma >= 0:
		run = strings.Replace(run, ",", ".", 1)
	}

	parsed, err := strconv.ParseFloat(run, 64)
	if err != nil {
		return 0, false
	}
	return finite(parsed)
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
