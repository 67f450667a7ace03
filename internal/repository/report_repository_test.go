package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/puddle/v2"

	"github.com/rpattn/sightline/internal/domain"
	"github.com/rpattn/sightline/internal/ingest"
)

func TestStorageUnavailableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "dial failure",
			err:  fmt.Errorf("exec: %w", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}),
			want: true,
		},
		{
			name: "closed pool",
			err:  fmt.Errorf("acquire: %w", puddle.ErrClosedPool),
			want: true,
		},
		{
			name: "statement failure stays recoverable",
			err:  errors.New("ERROR: null value in column \"description\" (SQLSTATE 23502)"),
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := storageUnavailable(tc.err); got != tc.want {
				t.Fatalf("storageUnavailable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestUpsertAllAbortsWhenStorageDown(t *testing.T) {
	repo := NewReportRepository(nil)
	sightings := make([]domain.Sighting, 3)
	for i := range sightings {
		sightings[i] = domain.Sighting{Description: fmt.Sprintf("s%d", i), SourceName: "TEST"}
	}

	affected, chunkErrors, err := ingest.UpsertAll(context.Background(), repo, sightings, 1)
	if !errors.Is(err, ingest.ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable to surface through the orchestrator, got %v", err)
	}
	if affected != 0 {
		t.Fatalf("no rows may be reported as stored, got %d", affected)
	}
	if len(chunkErrors) != 0 {
		t.Fatalf("an unavailable store must abort, not accumulate chunk errors: %+v", chunkErrors)
	}
}
