package ingest

import (
	"errors"
	"testing"
)

func csvProfile(headerless bool) SourceProfile {
	return SourceProfile{
		Name:       "TEST",
		Kind:       SourceKindCSV,
		Headerless: headerless,
		Fields:     map[string][]string{FieldDescription: {"summary"}},
	}
}

func TestParseRowsHeaderBased(t *testing.T) {
	text := "date,city,summary\n2024-01-01,Paris,Bright light\n2024-01-02,Lyon,Slow orb\n"
	rows, skipped, err := ParseRows(nil, text, csvProfile(false), Dialect{Delimiter: ',', QuoteChar: '"', LaxQuoting: true})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(rows) != 2 || len(skipped) != 0 {
		t.Fatalf("expected 2 rows, got %d rows %d skipped", len(rows), len(skipped))
	}
	if rows[0].Values["city"] != "Paris" || rows[1].Values["summary"] != "Slow orb" {
		t.Fatalf("unexpected row values: %+v", rows)
	}
	if len(rows[0].Columns) != 3 || rows[0].Columns[0] != "date" || rows[0].Columns[2] != "summary" {
		t.Fatalf("column order must be preserved: %v", rows[0].Columns)
	}
}

func TestParseRowsToleratesRaggedRows(t *testing.T) {
	text := "date,city,summary\n2024-01-01,Paris\n2024-01-02,Lyon,Slow orb\n"
	rows, skipped, err := ParseRows(nil, text, csvProfile(false), Dialect{Delimiter: ',', LaxQuoting: true})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(rows) != 2 || len(skipped) != 0 {
		t.Fatalf("short row must not be dropped by the parser: %d rows %d skipped", len(rows), len(skipped))
	}
	if _, ok := rows[0].Values["summary"]; ok {
		t.Fatalf("missing trailing field must be absent, got %+v", rows[0].Values)
	}
}

func TestParseRowsFoldsExtraFieldsIntoLastColumn(t *testing.T) {
	text := "date,city,summary\n2024-01-01,Paris,saw a light,then two more\n"
	rows, _, err := ParseRows(nil, text, csvProfile(false), Dialect{Delimiter: ',', LaxQuoting: true})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if got := rows[0].Values["summary"]; got != "saw a light,then two more" {
		t.Fatalf("extra fields must fold into the last column, got %q", got)
	}
}

func TestParseRowsSkipsBlankRows(t *testing.T) {
	text := "date;city;summary\n2024-01-01;Paris;Bright light\n;;\n"
	rows, skipped, err := ParseRows(nil, text, csvProfile(false), Dialect{Delimiter: ';', LaxQuoting: true})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(rows) != 1 || len(skipped) != 1 {
		t.Fatalf("expected 1 row and 1 skipped, got %d and %d", len(rows), len(skipped))
	}
}

func TestParseRowsHeaderless(t *testing.T) {
	text := "2024-01-01,Paris,Bright light\n2024-01-02,Lyon,Slow orb\n"
	rows, _, err := ParseRows(nil, text, csvProfile(true), Dialect{Delimiter: ',', LaxQuoting: true})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("headerless input must treat the first line as data, got %d rows", len(rows))
	}
	if rows[0].Values["col_1"] != "Paris" {
		t.Fatalf("expected positional col_1=Paris, got %+v", rows[0].Values)
	}
}

func TestParseRowsQuotedDelimiters(t *testing.T) {
	text := "date,city,summary\n2024-01-01,\"Paris, France\",\"light, hovering\"\n"
	rows, _, err := ParseRows(nil, text, csvProfile(false), Dialect{Delimiter: ',', LaxQuoting: true})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if rows[0].Values["city"] != "Paris, France" {
		t.Fatalf("quoted span split incorrectly: %+v", rows[0].Values)
	}
}

func TestParseRowsEmptyInput(t *testing.T) {
	_, _, err := ParseRows(nil, "   \n  ", csvProfile(false), Dialect{Delimiter: ',', LaxQuoting: true})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestParseRowsJSONArray(t *testing.T) {
	profile := SourceProfile{Name: "TEST", Kind: SourceKindJSON, Fields: map[string][]string{FieldDescription: {"summary"}}}
	text := `[{"date":"2024-01-01","city":"Paris","summary":"Bright light","lat":48.85},{}]`

	rows, skipped, err := ParseRows(nil, text, profile, Dialect{})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(rows) != 1 || len(skipped) != 1 {
		t.Fatalf("expected 1 row and 1 skipped empty object, got %d and %d", len(rows), len(skipped))
	}
	if rows[0].Values["lat"] != "48.85" {
		t.Fatalf("numeric values must stringify cleanly, got %q", rows[0].Values["lat"])
	}
}

func TestParseRowsJSONSingleObject(t *testing.T) {
	profile := SourceProfile{Name: "USER", Kind: SourceKindJSON, Fields: map[string][]string{FieldDescription: {"description"}}}
	rows, _, err := ParseRows(nil, `{"description":"two lights","city":"Oslo"}`, profile, Dialect{})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("a single object must parse as a one-row array, got %d rows", len(rows))
	}
}
