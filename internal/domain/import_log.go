package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportLogEntry captures the outcome of one completed import run.
type ImportLogEntry struct {
	ID            uuid.UUID `json:"id"`
	SourceName    string    `json:"source_name"`
	ParsedRows    int       `json:"parsed_rows"`
	StoredRows    int       `json:"stored_rows"`
	SkippedRows   int       `json:"skipped_rows"`
	Status        string    `json:"status"`
	ErrorSummary  *string   `json:"error_summary,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Import log statuses.
const (
	ImportStatusCompleted = "completed"
	ImportStatusPartial   = "partial"
	ImportStatusFailed    = "failed"
)

// NewImportLogEntry builds a log entry from an import result.
func NewImportLogEntry(result ImportResult) ImportLogEntry {
	entry := ImportLogEntry{
		ID:          uuid.New(),
		SourceName:  result.SourceName,
		ParsedRows:  result.ParsedCount,
		StoredRows:  result.InsertedOrUpdatedCount,
		SkippedRows: result.SkippedCount,
		Status:      ImportStatusCompleted,
		CreatedAt:   time.Now(),
	}
	if len(result.Errors) > 0 {
		entry.Status = ImportStatusPartial
		summary := result.Errors[0].String()
		entry.ErrorSummary = &summary
	}
	return entry
}
