package leads

import (
	"fmt"
	"strconv"
	"strings"
)

const idPrefix = "GLS-"

// FormatID renders the nth lead identifier, e.g. GLS-007.
func FormatID(n int64) string {
	return fmt.Sprintf("%s%03d", idPrefix, n)
}

// ParseIDNumber extracts the sequence number from an identifier.
func ParseIDNumber(id string) (int64, bool) {
	raw, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(id)), idPrefix)
	if !ok || raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
