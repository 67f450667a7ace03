package domain

import (
	"fmt"
	"strings"
	"time"
)

// Sighting is the canonical normalized record produced by the ingestion
// pipeline. Optional fields are pointers; nil means the source did not
// supply a usable value.
type Sighting struct {
	Description string     `json:"description"`
	DateEvent   *time.Time `json:"date_event,omitempty"`
	City        *string    `json:"city,omitempty"`
	State       *string    `json:"state,omitempty"`
	Country     *string    `json:"country,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	Shape       *string    `json:"shape,omitempty"`
	Duration    *string    `json:"duration,omitempty"`
	SourceName  string     `json:"source_name"`
	OriginalID  *string    `json:"original_id,omitempty"`
	DedupeKey   string     `json:"dedupe_key"`
}

// ValidLatitude reports whether lat is inside the WGS-84 range.
func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lon is inside the WGS-84 range.
func ValidLongitude(lon float64) bool {
	return lon >= -180 && lon <= 180
}

// BuildAddress joins the discrete location fields into a single geocodable
// string, skipping blanks. Returns nil when nothing is present.
func BuildAddress(city, state, country *string) *string {
	var parts []string
	for _, p := range []*string{city, state, country} {
		if p == nil {
			continue
		}
		if v := strings.TrimSpace(*p); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	addr := strings.Join(parts, ", ")
	return &addr
}

// RowError records one recoverable per-row or per-chunk problem.
type RowError struct {
	RowIndex int    `json:"row_index"`
	Reason   string `json:"reason"`
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.RowIndex, e.Reason)
}

// ImportResult summarizes one import run. It is returned to the caller and
// never persisted by the pipeline itself.
type ImportResult struct {
	SourceName             string     `json:"source_name"`
	ParsedCount            int        `json:"parsed_count"`
	NormalizedCount        int        `json:"normalized_count"`
	InsertedOrUpdatedCount int        `json:"inserted_or_updated_count"`
	SkippedCount           int        `json:"skipped_count"`
	Errors                 []RowError `json:"errors,omitempty"`
}
