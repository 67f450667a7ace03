package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/sightline/internal/domain"
)

// ErrEmptyInput is returned when a raw source contains no parseable rows at
// all. Anything short of that degrades to fewer valid rows.
var ErrEmptyInput = errors.New("input contains no parseable rows")

// ErrUnsupportedFormat is returned for an unknown source kind.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// RawRow is one parsed input row: column name (or col_N for positional
// sources) to raw string value. Missing columns are simply absent.
type RawRow struct {
	// Index is the zero-based data row index within the source.
	Index int
	// Columns preserves the source's column order so downstream candidate
	// matching stays deterministic when distinct raw headers collide.
	Columns []string
	Values  map[string]string
}

// ParseRows turns a normalized raw payload into rows according to the
// profile's source kind. The skipped slice records lines that could not be
// parsed or carried no values; they count toward the run's parsed and
// skipped totals.
func ParseRows(payload []byte, text string, profile SourceProfile, dialect Dialect) ([]RawRow, []domain.RowError, error) {
	switch kind := profile.Kind; kind {
	case SourceKindCSV, "":
		return parseCSVRows(text, dialect, profile.Headerless)
	case SourceKindJSON:
		return parseJSONRows(text)
	case SourceKindXLSX:
		return parseXLSXRows(payload, profile.Headerless)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
	}
}

func parseCSVRows(text string, dialect Dialect, headerless bool) ([]RawRow, []domain.RowError, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, ErrEmptyInput
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = dialect.Delimiter
	reader.LazyQuotes = dialect.LaxQuoting
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var headers []string
	var rows []RawRow
	var skipped []domain.RowError
	index := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed quoting: the csv reader resumes at the next line, so
			// one bad line never aborts the batch.
			skipped = append(skipped, domain.RowError{RowIndex: index, Reason: fmt.Sprintf("malformed line: %v", err)})
			index++
			continue
		}

		if headers == nil && !headerless {
			headers = sanitizeHeaders(record)
			continue
		}
		if headers == nil {
			headers = positionalHeaders(len(record))
		}

		row, empty := recordToRow(record, headers, string(dialect.Delimiter), index)
		if empty {
			skipped = append(skipped, domain.RowError{RowIndex: index, Reason: "empty row"})
			index++
			continue
		}
		rows = append(rows, row)
		index++
	}

	if headers == nil {
		return nil, nil, ErrEmptyInput
	}
	return rows, skipped, nil
}

// recordToRow maps a csv record onto headers. Short rows leave trailing
// columns absent; extra trailing fields are folded into the last declared
// column rather than dropped.
func recordToRow(record []string, headers []string, delimiter string, index int) (RawRow, bool) {
	values := make(map[string]string, len(headers))
	empty := true
	for i, header := range headers {
		if i >= len(record) {
			break
		}
		value := record[i]
		if i == len(headers)-1 && len(record) > len(headers) {
			value = strings.Join(record[i:], delimiter)
		}
		values[header] = value
		if strings.TrimSpace(value) != "" {
			empty = false
		}
	}
	return RawRow{Index: index, Columns: headers, Values: values}, empty
}

func parseJSONRows(text string) ([]RawRow, []domain.RowError, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil, ErrEmptyInput
	}

	var objects []map[string]any
	if err := json.Unmarshal([]byte(trimmed), &objects); err != nil {
		// A single hand-submitted object is accepted as a one-row array.
		var single map[string]any
		if err2 := json.Unmarshal([]byte(trimmed), &single); err2 != nil {
			return nil, nil, fmt.Errorf("%w: not a JSON array", ErrEmptyInput)
		}
		objects = []map[string]any{single}
	}
	if len(objects) == 0 {
		return nil, nil, ErrEmptyInput
	}

	var rows []RawRow
	var skipped []domain.RowError
	for i, obj := range objects {
		columns := make([]string, 0, len(obj))
		for key := range obj {
			columns = append(columns, key)
		}
		sort.Strings(columns)

		values := make(map[string]string, len(obj))
		empty := true
		for _, key := range columns {
			value := stringifyJSONValue(obj[key])
			values[key] = value
			if strings.TrimSpace(value) != "" {
				empty = false
			}
		}
		if empty {
			skipped = append(skipped, domain.RowError{RowIndex: i, Reason: "empty row"})
			continue
		}
		rows = append(rows, RawRow{Index: i, Columns: columns, Values: values})
	}
	return rows, skipped, nil
}

func stringifyJSONValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		// Nested structures are opaque to the mapper.
		return ""
	}
}

func parseXLSXRows(payload []byte, headerless bool) ([]RawRow, []domain.RowError, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptyInput
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyInput
	}

	var headers []string
	var rows []RawRow
	var skipped []domain.RowError
	index := 0
	for _, record := range records {
		if headers == nil && !headerless {
			headers = sanitizeHeaders(record)
			continue
		}
		if headers == nil {
			headers = positionalHeaders(len(record))
		}
		row, empty := recordToRow(record, headers, ",", index)
		if empty {
			skipped = append(skipped, domain.RowError{RowIndex: index, Reason: "empty row"})
			index++
			continue
		}
		rows = append(rows, row)
		index++
	}
	if headers == nil {
		return nil, nil, ErrEmptyInput
	}
	return rows, skipped, nil
}

// sanitizeHeaders trims header cells and disambiguates duplicates; blank
// header cells fall back to positional names.
func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)
	for idx, value := range raw {
		name := strings.TrimSpace(value)
		if name == "" {
			name = fmt.Sprintf("col_%d", idx)
		}
		count := seen[name]
		seen[name] = count + 1
		if count > 0 {
			name = fmt.Sprintf("%s_%d", name, count+1)
		}
		headers[idx] = name
	}
	return headers
}

func positionalHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = fmt.Sprintf("col_%d", i)
	}
	return headers
}
