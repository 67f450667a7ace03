package ingest

import "strings"

// Dialect describes how raw text splits into fields.
type Dialect struct {
	Delimiter  rune
	QuoteChar  rune
	LaxQuoting bool
}

// Candidate delimiters in tie-break priority order.
var delimiterCandidates = []rune{',', ';', '|', '\t'}

// Known fixed dialects keyed by a lowercase hint fragment (source name or a
// recognizable URL piece). The GEIPAN public export is pipe-delimited; its
// data.gouv mirror re-exports with semicolons, which detection handles.
var dialectHints = map[string]Dialect{
	"geipan":          {Delimiter: '|', QuoteChar: '"', LaxQuoting: true},
	"export_cas_pub_": {Delimiter: '|', QuoteChar: '"', LaxQuoting: true},
	"nuforc":          {Delimiter: ',', QuoteChar: '"', LaxQuoting: true},
	"mufon":           {Delimiter: ',', QuoteChar: '"', LaxQuoting: true},
}

// DetectDialect picks a field delimiter and quoting dialect for text. When a
// hint (source name or URL fragment) matches a known feed, that wins;
// otherwise the first non-blank line is inspected and the candidate with the
// most occurrences outside quoted spans is chosen. LaxQuoting is always true
// because the upstream feeds emit unbalanced quotes.
func DetectDialect(text string, hint string) Dialect {
	if hint != "" {
		lower := strings.ToLower(hint)
		for fragment, dialect := range dialectHints {
			if strings.Contains(lower, fragment) {
				return dialect
			}
		}
	}

	line := firstNonBlankLine(text)
	best := delimiterCandidates[0]
	bestCount := -1
	for _, candidate := range delimiterCandidates {
		count := countOutsideQuotes(line, candidate)
		if count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return Dialect{Delimiter: best, QuoteChar: '"', LaxQuoting: true}
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

func countOutsideQuotes(line string, delimiter rune) int {
	count := 0
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == delimiter && !inQuotes:
			count++
		}
	}
	return count
}
