package storage

import (
	"fmt"
	"strings"
	"time"
)

// Object key prefixes for the documents bucket.
const (
	PrefixDevis          = "devis/"
	PrefixFactures       = "factures/"
	PrefixDevisFinalises = "devis/finalises/"
)

// ObjectKey builds a collision-free PDF key under the given prefix:
// <prefix><slug(name)>-<unix-milliseconds>.pdf.
func ObjectKey(prefix, name string, at time.Time) string {
	return fmt.Sprintf("%s%s-%d.pdf", prefix, Slug(name), at.UnixMilli())
}

// Slug lowercases name and collapses every non-alphanumeric run into a
// single hyphen, so client names are safe as object keys.
func Slug(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "document"
	}
	return slug
}
