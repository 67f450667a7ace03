package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/sightline/internal/domain"
)

// keySeparator joins the key parts; unit separator cannot occur in cleaned
// text, so field boundaries never collide.
const keySeparator = "\x1f"

// DeriveKey computes the content-derived identity of a sighting: SHA-256 over
// source name, event date, coordinates and description. Identical logical
// input always yields the same key, which is the storage layer's conflict
// target for idempotent re-imports.
func DeriveKey(s domain.Sighting) string {
	parts := []string{
		s.SourceName,
		formatDate(s.DateEvent),
		formatCoordinate(s.Latitude),
		formatCoordinate(s.Longitude),
		s.Description,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, keySeparator)))
	return hex.EncodeToString(sum[:])
}

func formatDate(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func formatCoordinate(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
