package ingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rpattn/sightline/internal/domain"
)

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006 15:04",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006",
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeColumnName folds a raw column name for candidate matching: trim,
// lowercase, accents stripped.
func normalizeColumnName(name string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(name))
	}
	return folded
}

// MapRow produces a normalized sighting from one raw row, or nil when the row
// lacks a usable description. It is a pure function of its inputs.
func MapRow(row RawRow, profile SourceProfile) *domain.Sighting {
	columns := row.Columns
	if len(columns) == 0 {
		columns = make([]string, 0, len(row.Values))
		for name := range row.Values {
			columns = append(columns, name)
		}
		sort.Strings(columns)
	}

	// Distinct raw headers can normalize to the same key (RESUME vs Résumé);
	// the earlier column wins unless it is blank, so the outcome never depends
	// on map iteration order.
	lookup := make(map[string]string, len(row.Values))
	for _, name := range columns {
		value, ok := row.Values[name]
		if !ok {
			continue
		}
		key := normalizeColumnName(name)
		current, exists := lookup[key]
		if !exists || (strings.TrimSpace(current) == "" && strings.TrimSpace(value) != "") {
			lookup[key] = value
		}
	}

	pick := func(field string) string {
		for _, candidate := range profile.Candidates(field) {
			if value, ok := lookup[normalizeColumnName(candidate)]; ok {
				if trimmed := strings.TrimSpace(value); trimmed != "" {
					return trimmed
				}
			}
		}
		return ""
	}

	description := pick(FieldDescription)
	if description == "" {
		return nil
	}

	sighting := &domain.Sighting{
		Description: description,
		SourceName:  profile.Name,
		DateEvent:   parseDate(pick(FieldDate), pick(FieldDateYear), pick(FieldDateMonth), pick(FieldDateDay), pick(FieldDateHour), pick(FieldDateMinute)),
		City:        optional(pick(FieldCity)),
		State:       optional(pick(FieldState)),
		Country:     optional(pick(FieldCountry)),
		Shape:       optional(strings.ToLower(pick(FieldShape))),
		Duration:    optional(pick(FieldDuration)),
		OriginalID:  optional(pick(FieldOriginalID)),
		Latitude:    parseCoordinate(pick(FieldLatitude), domain.ValidLatitude),
		Longitude:   parseCoordinate(pick(FieldLongitude), domain.ValidLongitude),
	}

	if sighting.Country == nil && profile.DefaultCountry != "" {
		sighting.Country = optional(profile.DefaultCountry)
	}
	sighting.Address = domain.BuildAddress(sighting.City, sighting.State, sighting.Country)

	return sighting
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// parseDate tries the direct layouts first, then reconstructs a timestamp
// from separate year/month/day/hour/minute columns. Unparseable dates map to
// nil, never to an error.
func parseDate(direct, year, month, day, hour, minute string) *time.Time {
	if direct != "" {
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, direct); err == nil {
				return &ts
			}
		}
	}
	if year == "" || month == "" || day == "" {
		return nil
	}

	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return nil
	}
	h, _ := strconv.Atoi(hour)
	min, _ := strconv.Atoi(minute)

	composed := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00Z", y, m, d, h, min)
	ts, err := time.Parse(time.RFC3339, composed)
	if err != nil {
		return nil
	}
	return &ts
}

// parseCoordinate parses a coordinate value, tolerating comma decimal
// separators from the French feeds. Out-of-range or unparseable values are
// treated as absent, not as a rejected row.
func parseCoordinate(raw string, valid func(float64) bool) *float64 {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || !valid(f) {
		return nil
	}
	return &f
}
