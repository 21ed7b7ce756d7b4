package service

import (
	"testing"
	"time"
)

func TestNormalizeReference(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		in   string
		want string
	}{
		{"2023-DEMANDE-1", "2025-DEMANDE-1"},
		{"2025-DEMANDE-1", "2025-DEMANDE-1"},
		{"2024/OFFRE-7", "2025-OFFRE-7"},
		{"DEMANDE-1", "2025-DEMANDE-1"},
		{"  2023-DEMANDE-1  ", "2025-DEMANDE-1"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeReference(tc.in, now); got != tc.want {
			t.Fatalf("NormalizeReference(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
