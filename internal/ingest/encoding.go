package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Character encodings a source profile may declare. UTF-8 is assumed unless
// the profile says otherwise; detection is deliberately not attempted so that
// re-imports stay deterministic.
const (
	EncodingUTF8    = "utf-8"
	EncodingLatin1  = "latin-1"
	EncodingWin1252 = "windows-1252"
)

var smartPunctuation = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", "'",
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"„", `"`,
	"«", `"`, // guillemets
	"»", `"`,
	"‹", "'",
	"›", "'",
)

// NormalizeText repairs raw upstream bytes into clean parseable text. It is
// total: every input yields some output.
//
// Steps: decode (declared encoding, with a Windows-1252 rescue when a
// declared-UTF-8 payload is not valid UTF-8), strip the byte order mark,
// unify line endings to \n, fold smart quotes to ASCII, and replace anything
// outside the printable range with a single space so column alignment in
// delimited formats survives.
func NormalizeText(raw []byte, encoding string) string {
	text := decode(raw, encoding)

	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = smartPunctuation.Replace(text)

	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == utf8.RuneError || !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, text)
}

func decode(raw []byte, encoding string) string {
	switch encoding {
	case EncodingLatin1:
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err == nil {
			return string(decoded)
		}
	case EncodingWin1252:
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err == nil {
			return string(decoded)
		}
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	// Declared UTF-8 but invalid; Windows-1252 maps every byte, so decoding
	// never loses data the way replacement runes would.
	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
		return string(decoded)
	}
	return string(raw)
}
