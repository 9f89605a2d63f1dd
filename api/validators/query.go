package validators

import (
	"net/http"
	"strings"
	"unicode/utf8"
)

// QueryString returns the trimmed query value for key, cut to at most maxLen
// bytes without splitting a UTF-8 sequence.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || len(trimmed) <= maxLen {
		return trimmed
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut]
}
