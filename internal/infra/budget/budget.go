// Package budget trims text to character ceilings before it is embedded in an
// LLM request. Characters are runes; the ceiling approximates a token limit.
package budget

import "unicode/utf8"

const (
	DefaultDocumentChars = 4000
	DefaultResultChars   = 1200

	DocumentMarker = "\n\n[... document truncated ...]"
	ResultMarker   = "\n\n[... analysis truncated ...]"
)

// Budget is a character ceiling plus the marker appended when text is cut.
type Budget struct {
	Max    int
	Marker string
}

// Document returns the raw-document budget. Non-positive max selects the default.
func Document(max int) Budget {
	if max <= 0 {
		max = DefaultDocumentChars
	}
	return Budget{Max: max, Marker: DocumentMarker}
}

// Result returns the per-result budget. Non-positive max selects the default.
func Result(max int) Budget {
	if max <= 0 {
		max = DefaultResultChars
	}
	return Budget{Max: max, Marker: ResultMarker}
}

// Truncate returns text unchanged when it fits, otherwise its first b.Max
// characters followed by the marker. Cutting an already cut text again yields
// the same text.
func (b Budget) Truncate(text string) string {
	if utf8.RuneCountInString(text) <= b.Max {
		return text
	}
	return prefix(text, b.Max) + b.Marker
}

// Truncate cuts text to max characters using the document marker.
func Truncate(text string, max int) string {
	return Budget{Max: max, Marker: DocumentMarker}.Truncate(text)
}

func prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
