package shared

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// schemePattern matches an RFC 3986 scheme followed by a colon, e.g. "https:" or "data:".
var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// HasURLScheme reports whether s begins with a URL scheme.
func HasURLScheme(s string) bool {
	return schemePattern.MatchString(strings.TrimSpace(s))
}

// FormatDuration renders a millisecond duration as m:ss (or h:mm:ss past an hour).
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// MarshalJSON encodes v as JSON, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
