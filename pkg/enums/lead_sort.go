package enums

import (
	"fmt"
	"strings"
)

// LeadSort is the ordering applied by the lead list pipeline.
type LeadSort string

const (
	LeadSortNewest  LeadSort = "newest"
	LeadSortOldest  LeadSort = "oldest"
	LeadSortUrgency LeadSort = "urgency"
	LeadSortStatus  LeadSort = "status"
)

var validLeadSorts = []LeadSort{
	LeadSortNewest,
	LeadSortOldest,
	LeadSortUrgency,
	LeadSortStatus,
}

func (s LeadSort) IsValid() bool {
	for _, candidate := range validLeadSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLeadSort returns newest for empty input.
func ParseLeadSort(value string) (LeadSort, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return LeadSortNewest, nil
	}
	if sort := LeadSort(normalized); sort.IsValid() {
		return sort, nil
	}
	return "", fmt.Errorf("invalid sort %q", value)
}
