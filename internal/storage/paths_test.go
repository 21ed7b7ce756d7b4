package storage

import (
	"testing"
	"time"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Régie Dupont & Fils", "r-gie-dupont-fils"},
		{"Nettoyage   SA", "nettoyage-sa"},
		{"---", "document"},
		{"", "document"},
		{"Bureau 3ème étage", "bureau-3-me-tage"},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1735689600000)

	key := ObjectKey(PrefixDevisFinalises, "Régie Dupont", at)
	want := "devis/finalises/r-gie-dupont-1735689600000.pdf"
	if key != want {
		t.Fatalf("ObjectKey = %q, want %q", key, want)
	}

	if got := ObjectKey(PrefixFactures, "ACME", at); got != "factures/acme-1735689600000.pdf" {
		t.Fatalf("ObjectKey = %q", got)
	}
}
