package ingest

import (
	"testing"
	"time"

	"github.com/rpattn/sightline/internal/domain"
)

func sampleSighting() domain.Sighting {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lat, lon := 48.85, 2.35
	return domain.Sighting{
		Description: "bright light over the river",
		SourceName:  "GEIPAN",
		DateEvent:   &ts,
		Latitude:    &lat,
		Longitude:   &lon,
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	a := DeriveKey(sampleSighting())
	b := DeriveKey(sampleSighting())
	if a != b {
		t.Fatalf("identical input must produce identical keys: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha-256, got %q", a)
	}
}

func TestDeriveKeyChangesWithEachField(t *testing.T) {
	base := DeriveKey(sampleSighting())

	s := sampleSighting()
	s.Description = "two bright lights"
	if DeriveKey(s) == base {
		t.Fatalf("description change must change the key")
	}

	s = sampleSighting()
	s.SourceName = "NUFORC"
	if DeriveKey(s) == base {
		t.Fatalf("source change must change the key")
	}

	s = sampleSighting()
	s.DateEvent = nil
	if DeriveKey(s) == base {
		t.Fatalf("date change must change the key")
	}

	s = sampleSighting()
	lat := 48.86
	s.Latitude = &lat
	if DeriveKey(s) == base {
		t.Fatalf("latitude change must change the key")
	}
}

func TestDeriveKeyStableWithoutCoordinates(t *testing.T) {
	s := sampleSighting()
	s.Latitude = nil
	s.Longitude = nil
	a := DeriveKey(s)
	b := DeriveKey(s)
	if a != b || a == "" {
		t.Fatalf("coordinate-free sightings still need a stable key")
	}
}
