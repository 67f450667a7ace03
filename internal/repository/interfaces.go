package repository

import (
	"context"

	"github.com/rpattn/sightline/internal/domain"
)

// ReportAddress identifies a stored report that has an address but no
// coordinates yet.
type ReportAddress struct {
	ID      int64
	Address string
}

// ReportRepository defines storage operations over the reports table.
type ReportRepository interface {
	// UpsertBatch inserts or updates sightings keyed on dedupe_key and
	// returns the affected row count.
	UpsertBatch(ctx context.Context, sightings []domain.Sighting) (int, error)
	// MissingCoordinates lists reports awaiting geocoding enrichment.
	MissingCoordinates(ctx context.Context, limit int) ([]ReportAddress, error)
	// SetCoordinates fills in a geocoded coordinate pair.
	SetCoordinates(ctx context.Context, id int64, lat, lon float64) error
	// Count returns the number of stored reports.
	Count(ctx context.Context) (int64, error)
}

// ImportLogRepository defines operations over the imports_log table.
type ImportLogRepository interface {
	RecordImport(ctx context.Context, entry domain.ImportLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]domain.ImportLogEntry, error)
}
