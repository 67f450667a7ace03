package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/rpattn/sightline/internal/domain"
)

// State names the run stages that appear in import logs.
type State string

const (
	StateFetching  State = "fetching"
	StateParsing   State = "parsing"
	StateUpserting State = "upserting"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// Options tune one import run.
type Options struct {
	// ChunkSize overrides DefaultChunkSize when positive.
	ChunkSize int
}

// Runner ties the pipeline stages into one callable operation per source.
// Collaborators are injected; the runner holds no mutable state of its own,
// so concurrent runs for different sources are independent.
type Runner struct {
	fetcher Fetcher
	store   Store
}

// NewRunner wires a runner with its fetch and storage collaborators.
func NewRunner(fetcher Fetcher, store Store) *Runner {
	return &Runner{fetcher: fetcher, store: store}
}

// Run executes a full import session for one source: fetch, normalize,
// detect, parse, map, dedupe, upsert, summarize. Only a fetch failure, a
// structurally empty source, or storage being unavailable fail the run;
// everything else degrades to fewer stored rows, reported in the result.
func (r *Runner) Run(ctx context.Context, profile SourceProfile, locator string, opts Options) (domain.ImportResult, error) {
	result := domain.ImportResult{SourceName: profile.Name}

	log.Printf("[IMPORT] %s: %s %s", profile.Name, StateFetching, locator)
	raw, err := r.fetcher.Fetch(ctx, locator)
	if err != nil {
		log.Printf("[IMPORT] %s: %s: %v", profile.Name, StateFailed, err)
		return result, fmt.Errorf("failed to fetch source %s: %w", profile.Name, err)
	}

	return r.RunBytes(ctx, profile, raw, locator, opts)
}

// RunBytes runs the pipeline over already-fetched bytes. Hand-submitted
// payloads enter here directly; hint feeds dialect detection when the profile
// carries none.
func (r *Runner) RunBytes(ctx context.Context, profile SourceProfile, raw []byte, hint string, opts Options) (domain.ImportResult, error) {
	result := domain.ImportResult{SourceName: profile.Name}

	text := NormalizeText(raw, profile.Encoding)

	dialectHint := profile.DialectHint
	if dialectHint == "" {
		dialectHint = hint
	}
	dialect := DetectDialect(text, dialectHint)

	rows, skipped, err := ParseRows(raw, text, profile, dialect)
	if err != nil {
		log.Printf("[IMPORT] %s: %s at %s: %v", profile.Name, StateFailed, StateParsing, err)
		return result, err
	}
	result.ParsedCount = len(rows) + len(skipped)
	result.SkippedCount = len(skipped)
	result.Errors = append(result.Errors, skipped...)

	sightings := make([]domain.Sighting, 0, len(rows))
	for _, row := range rows {
		sighting := MapRow(row, profile)
		if sighting == nil {
			result.SkippedCount++
			result.Errors = append(result.Errors, domain.RowError{
				RowIndex: row.Index,
				Reason:   "missing description",
			})
			continue
		}
		sighting.DedupeKey = DeriveKey(*sighting)
		sightings = append(sightings, *sighting)
	}
	result.NormalizedCount = len(sightings)

	affected, chunkErrors, err := UpsertAll(ctx, r.store, sightings, opts.ChunkSize)
	result.InsertedOrUpdatedCount = affected
	result.Errors = append(result.Errors, chunkErrors...)
	if err != nil {
		log.Printf("[IMPORT] %s: %s at %s: %v", profile.Name, StateFailed, StateUpserting, err)
		return result, err
	}

	log.Printf("[IMPORT] %s: %s parsed=%d normalized=%d stored=%d skipped=%d errors=%d",
		profile.Name, StateDone, result.ParsedCount, result.NormalizedCount,
		result.InsertedOrUpdatedCount, result.SkippedCount, len(result.Errors))
	return result, nil
}
