package geocode

import (
	"context"
	"fmt"
	"log"

	"github.com/rpattn/sightline/internal/repository"
)

// DefaultSweepLimit bounds how many reports one sweep attempts, keeping each
// run short and cheap against the geocoder's rate limits.
const DefaultSweepLimit = 50

// Sweeper backfills coordinates for reports that carry an address but no
// latitude. It runs as a separate enrichment pass, never during import.
type Sweeper struct {
	reports  repository.ReportRepository
	geocoder Geocoder
	limit    int
}

// NewSweeper wires a sweeper; limit falls back to DefaultSweepLimit.
func NewSweeper(reports repository.ReportRepository, geocoder Geocoder, limit int) *Sweeper {
	if limit <= 0 {
		limit = DefaultSweepLimit
	}
	return &Sweeper{reports: reports, geocoder: geocoder, limit: limit}
}

// SweepResult summarizes one enrichment pass.
type SweepResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Sweep pages through reports missing coordinates and fills in what the
// geocoder can resolve. Individual lookup failures are logged and skipped;
// only listing the candidates can fail the sweep.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	pending, err := s.reports.MissingCoordinates(ctx, s.limit)
	if err != nil {
		return result, fmt.Errorf("failed to list geocoding candidates: %w", err)
	}
	result.Scanned = len(pending)

	for _, report := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		coords, err := s.geocoder.Geocode(ctx, report.Address)
		if err != nil {
			log.Printf("[GEOCODE] lookup failed for report %d: %v", report.ID, err)
			result.Failed++
			continue
		}
		if coords == nil {
			continue
		}

		if err := s.reports.SetCoordinates(ctx, report.ID, coords.Lat, coords.Lon); err != nil {
			log.Printf("[GEOCODE] failed to store coordinates for report %d: %v", report.ID, err)
			result.Failed++
			continue
		}
		result.Updated++
	}

	log.Printf("[GEOCODE] sweep done: scanned=%d updated=%d failed=%d", result.Scanned, result.Updated, result.Failed)
	return result, nil
}
