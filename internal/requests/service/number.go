package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"conciergerie_backend/platform/apperr"
)

const (
	requestNumberAttempts = 5
	requestSegmentLength  = 5
)

// randomSegment produces an uppercase base-36 segment, padded with X when
// the draw comes up short.
func randomSegment() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	n := binary.BigEndian.Uint64(buf[:])

	segment := strings.ToUpper(strconv.FormatUint(n, 36))
	if len(segment) > requestSegmentLength {
		segment = segment[:requestSegmentLength]
	}
	for len(segment) < requestSegmentLength {
		segment += "X"
	}
	return segment
}

// generateRequestNumber builds a REQ-<year>-<segment> number, retrying up
// to 5 times on storage collisions. The 5th collision fails deterministically
// rather than looping.
func (s *Service) generateRequestNumber(ctx context.Context, now time.Time) (string, error) {
	for attempt := 1; attempt <= requestNumberAttempts; attempt++ {
		candidate := fmt.Sprintf("REQ-%d-%s", now.Year(), s.segment())

		exists, err := s.repo.RequestNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		s.log.Warn("request number collision", "candidate", candidate, "attempt", attempt)
	}
	return "", apperr.Internal("impossible de générer un numéro de demande unique")
}
