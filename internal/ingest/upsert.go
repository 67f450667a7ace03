package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rpattn/sightline/internal/domain"
)

// DefaultChunkSize bounds how many sightings one storage upsert carries.
const DefaultChunkSize = 500

// ErrStorageUnavailable marks the storage collaborator as down; the
// orchestrator aborts remaining chunks instead of recording and continuing.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store is the storage collaborator consumed by the pipeline. Upserts are
// keyed on the sighting's dedupe key, so re-running an import converges
// instead of duplicating rows.
type Store interface {
	// UpsertBatch inserts or updates the given sightings and returns the
	// affected row count.
	UpsertBatch(ctx context.Context, sightings []domain.Sighting) (int, error)
}

// UpsertAll partitions sightings into fixed-size chunks, preserving order,
// and upserts one chunk per storage call. A failing chunk is recorded with
// its starting row index and processing continues; only context cancellation
// (checked between chunks, never mid-chunk) or ErrStorageUnavailable stops
// the loop early.
func UpsertAll(ctx context.Context, store Store, sightings []domain.Sighting, chunkSize int) (int, []domain.RowError, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	affected := 0
	var chunkErrors []domain.RowError

	for start := 0; start < len(sightings); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return affected, chunkErrors, err
		}

		end := start + chunkSize
		if end > len(sightings) {
			end = len(sightings)
		}
		chunk := sightings[start:end]

		count, err := store.UpsertBatch(ctx, chunk)
		if err != nil {
			if errors.Is(err, ErrStorageUnavailable) {
				return affected, chunkErrors, err
			}
			log.Printf("[IMPORT] chunk starting at row %d failed: %v", start, err)
			chunkErrors = append(chunkErrors, domain.RowError{
				RowIndex: start,
				Reason:   fmt.Sprintf("chunk upsert failed: %v", err),
			})
			continue
		}
		if count < 0 {
			// Store could not report a count; assume the whole chunk landed.
			count = len(chunk)
		}
		affected += count
	}

	return affected, chunkErrors, nil
}
