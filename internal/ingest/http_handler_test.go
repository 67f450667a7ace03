package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpattn/sightline/internal/domain"
)

type stubImportLogs struct {
	entries []domain.ImportLogEntry
}

func (s *stubImportLogs) RecordImport(ctx context.Context, entry domain.ImportLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func TestServeImportRunsAndLogs(t *testing.T) {
	if err := RegisterProfile(SourceProfile{
		Name:       "HANDLERTEST",
		DefaultURL: "https://example.org/feed.csv",
		Fields:     map[string][]string{FieldDescription: {"summary"}},
	}); err != nil {
		t.Fatalf("register profile: %v", err)
	}

	fetcher := &stubFetcher{payload: []byte("summary\nbright light\n")}
	logs := &stubImportLogs{}
	handler := NewHTTPHandler(NewRunner(fetcher, newStubStore()), logs, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/import/handlertest", nil)
	req.SetPathValue("source", "handlertest")
	rec := httptest.NewRecorder()
	handler.ServeImport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool                `json:"success"`
		Data    domain.ImportResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Success || resp.Data.NormalizedCount != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if len(fetcher.fetched) != 1 || fetcher.fetched[0] != "https://example.org/feed.csv" {
		t.Fatalf("default URL not used: %v", fetcher.fetched)
	}
	if len(logs.entries) != 1 || logs.entries[0].Status != domain.ImportStatusCompleted {
		t.Fatalf("import must be logged: %+v", logs.entries)
	}
}

func TestServeImportUnknownSource(t *testing.T) {
	handler := NewHTTPHandler(NewRunner(&stubFetcher{}, newStubStore()), nil, 0)
	req := httptest.NewRequest(http.MethodPost, "/api/import/nope", nil)
	req.SetPathValue("source", "nope")
	rec := httptest.NewRecorder()
	handler.ServeImport(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown source, got %d", rec.Code)
	}
}

func TestServeImportFetchFailure(t *testing.T) {
	if err := RegisterProfile(SourceProfile{
		Name:       "DOWNSTREAM",
		DefaultURL: "https://example.org/feed.csv",
		Fields:     map[string][]string{FieldDescription: {"summary"}},
	}); err != nil {
		t.Fatalf("register profile: %v", err)
	}

	fetcher := &stubFetcher{err: ErrFetchTimeout}
	logs := &stubImportLogs{}
	handler := NewHTTPHandler(NewRunner(fetcher, newStubStore()), logs, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/import/downstream", nil)
	req.SetPathValue("source", "downstream")
	rec := httptest.NewRecorder()
	handler.ServeImport(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 for fetch timeout, got %d", rec.Code)
	}
	if len(logs.entries) != 1 || logs.entries[0].Status != domain.ImportStatusFailed {
		t.Fatalf("failed run must be logged as failed: %+v", logs.entries)
	}
}

func TestServeSourcesListsProfiles(t *testing.T) {
	handler := NewHTTPHandler(NewRunner(&stubFetcher{}, newStubStore()), nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	rec := httptest.NewRecorder()
	handler.ServeSources(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Success {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}

	byName := make(map[string]string, len(resp.Data))
	for _, s := range resp.Data {
		byName[s.Name] = s.Kind
	}
	if byName["GEIPAN"] != "csv" || byName["USER"] != "json" {
		t.Fatalf("builtin sources missing or miskinded: %v", byName)
	}
}

func TestServeReport(t *testing.T) {
	handler := NewHTTPHandler(NewRunner(&stubFetcher{}, newStubStore()), nil, 0)

	body := `{"description":"two lights over the bay","city":"Oslo","lat":"59.91","lon":"10.75"}`
	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeReport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServeReportMissingDescription(t *testing.T) {
	handler := NewHTTPHandler(NewRunner(&stubFetcher{}, newStubStore()), nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`{"city":"Oslo"}`))
	rec := httptest.NewRecorder()
	handler.ServeReport(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing description, got %d", rec.Code)
	}
}
