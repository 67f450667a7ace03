package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/rpattn/sightline/internal/domain"
)

// ImportLogger records completed runs; storage of the log is optional and a
// failure to record never fails the request.
type ImportLogger interface {
	RecordImport(ctx context.Context, entry domain.ImportLogEntry) error
}

// Handler exposes the import pipeline over HTTP.
type Handler struct {
	runner    *Runner
	logs      ImportLogger
	chunkSize int
}

// NewHTTPHandler wires the runner and import log into an HTTP handler.
// chunkSize is the configured upsert chunk size; individual requests may
// override it.
func NewHTTPHandler(runner *Runner, logs ImportLogger, chunkSize int) *Handler {
	return &Handler{runner: runner, logs: logs, chunkSize: chunkSize}
}

type importRequest struct {
	URL       string `json:"url,omitempty"`
	ChunkSize int    `json:"chunk_size,omitempty"`
}

// ServeImport handles POST /api/import/{source}: it translates the request
// into one pipeline run and the ImportResult into a response, nothing more.
func (h *Handler) ServeImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sourceName := strings.TrimSpace(r.PathValue("source"))
	profile, err := LookupProfile(sourceName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req importRequest
	if r.Body != nil {
		body, readErr := io.ReadAll(r.Body)
		if readErr == nil && len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
				return
			}
		}
	}

	locator := req.URL
	if locator == "" {
		locator = profile.DefaultURL
	}
	if locator == "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("source %s has no default URL; provide one", sourceName))
		return
	}

	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = h.chunkSize
	}

	result, err := h.runner.Run(r.Context(), profile, locator, Options{ChunkSize: chunkSize})
	if err != nil {
		h.recordRun(r.Context(), result, err)
		writeError(w, statusForRunError(err), err.Error())
		return
	}

	h.recordRun(r.Context(), result, nil)
	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: result})
}

// ServeReport handles POST /api/report: one hand-submitted sighting pushed
// through the USER profile.
func (h *Handler) ServeReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, "missing body")
		return
	}

	profile, err := LookupProfile("USER")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.runner.RunBytes(r.Context(), profile, body, "", Options{})
	if err != nil {
		writeError(w, statusForRunError(err), err.Error())
		return
	}
	if result.NormalizedCount == 0 {
		writeError(w, http.StatusBadRequest, "report is missing a description")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: result})
}

// ServeSources handles GET /api/sources: the registered source profiles,
// name and kind only, so operators can see what an import endpoint accepts.
func (h *Handler) ServeSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type sourceInfo struct {
		Name       string     `json:"name"`
		Kind       SourceKind `json:"kind"`
		DefaultURL string     `json:"default_url,omitempty"`
	}

	profiles := AllProfiles()
	sources := make([]sourceInfo, 0, len(profiles))
	for _, p := range profiles {
		kind := p.Kind
		if kind == "" {
			kind = SourceKindCSV
		}
		sources = append(sources, sourceInfo{Name: p.Name, Kind: kind, DefaultURL: p.DefaultURL})
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: sources})
}

func (h *Handler) recordRun(ctx context.Context, result domain.ImportResult, runErr error) {
	if h.logs == nil {
		return
	}
	entry := domain.NewImportLogEntry(result)
	if runErr != nil {
		entry.Status = domain.ImportStatusFailed
		msg := runErr.Error()
		entry.ErrorSummary = &msg
	}
	if err := h.logs.RecordImport(ctx, entry); err != nil {
		log.Printf("[IMPORT] failed to record import log for %s: %v", result.SourceName, err)
	}
}

func statusForRunError(err error) int {
	switch {
	case errors.Is(err, ErrFetchTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
