package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/puddle/v2"

	"github.com/rpattn/sightline/internal/domain"
	"github.com/rpattn/sightline/internal/ingest"
)

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository wires a reports repository backed by pgxpool.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const upsertReportSQL = `
	INSERT INTO reports (
		dedupe_key, description, date_event, city, state, country, address,
		latitude, longitude, shape, duration, source_name, original_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (dedupe_key) DO UPDATE SET
		description = EXCLUDED.description,
		date_event  = EXCLUDED.date_event,
		city        = EXCLUDED.city,
		state       = EXCLUDED.state,
		country     = EXCLUDED.country,
		address     = EXCLUDED.address,
		latitude    = COALESCE(EXCLUDED.latitude, reports.latitude),
		longitude   = COALESCE(EXCLUDED.longitude, reports.longitude),
		shape       = EXCLUDED.shape,
		duration    = EXCLUDED.duration,
		original_id = EXCLUDED.original_id,
		updated_at  = now()`

// UpsertBatch sends one chunk of sightings as a pgx batch; the conflict
// target is the content-derived dedupe key, so re-imports converge.
func (r *reportRepository) UpsertBatch(ctx context.Context, sightings []domain.Sighting) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("report repository not initialized: %w", ingest.ErrStorageUnavailable)
	}
	if len(sightings) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, s := range sightings {
		batch.Queue(upsertReportSQL,
			s.DedupeKey,
			s.Description,
			s.DateEvent,
			s.City,
			s.State,
			s.Country,
			s.Address,
			s.Latitude,
			s.Longitude,
			s.Shape,
			s.Duration,
			s.SourceName,
			s.OriginalID,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	affected := 0
	for range sightings {
		tag, err := results.Exec()
		if err != nil {
			if storageUnavailable(err) {
				return affected, fmt.Errorf("failed to upsert report batch: %w (%w)", ingest.ErrStorageUnavailable, err)
			}
			return affected, fmt.Errorf("failed to upsert report batch: %w", err)
		}
		affected += int(tag.RowsAffected())
	}
	return affected, nil
}

// storageUnavailable distinguishes connection-level failures (database down,
// pool closed, dial errors) from statement failures. The pipeline aborts a
// run on the former and records-and-continues on the latter.
func storageUnavailable(err error) bool {
	if errors.Is(err, puddle.ErrClosedPool) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}

func (r *reportRepository) MissingCoordinates(ctx context.Context, limit int) ([]ReportAddress, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("report repository not initialized: %w", ingest.ErrStorageUnavailable)
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, address FROM reports
		 WHERE address IS NOT NULL AND latitude IS NULL
		 ORDER BY id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports missing coordinates: %w", err)
	}
	defer rows.Close()

	var result []ReportAddress
	for rows.Next() {
		var ra ReportAddress
		if err := rows.Scan(&ra.ID, &ra.Address); err != nil {
			return nil, fmt.Errorf("failed to scan report address: %w", err)
		}
		result = append(result, ra)
	}
	return result, rows.Err()
}

func (r *reportRepository) SetCoordinates(ctx context.Context, id int64, lat, lon float64) error {
	if r.pool == nil {
		return fmt.Errorf("report repository not initialized: %w", ingest.ErrStorageUnavailable)
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE reports SET latitude = $2, longitude = $3, updated_at = now() WHERE id = $1`,
		id, lat, lon)
	if err != nil {
		return fmt.Errorf("failed to set coordinates for report %d: %w", id, err)
	}
	return nil
}

func (r *reportRepository) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("report repository not initialized: %w", ingest.ErrStorageUnavailable)
	}
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reports`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}
