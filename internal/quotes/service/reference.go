package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// yearPrefix matches a leading 4-digit year and its separator in a
// document reference ("2023-DEMANDE-1", "2023/DEMANDE-1").
var yearPrefix = regexp.MustCompile(`^\d{4}[-/_.]`)

// NormalizeReference rewrites a reference so it carries the current year
// as prefix. A stale leading year is replaced, a current one is kept, and
// a reference without a year gets one prepended. Empty stays empty so the
// caller can substitute the generated quote number.
func NormalizeReference(ref string, now time.Time) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	year := fmt.Sprintf("%d", now.Year())
	if m := yearPrefix.FindString(ref); m != "" {
		if strings.HasPrefix(m, year) {
			return ref
		}
		return year + "-" + ref[len(m):]
	}
	return year + "-" + ref
}
