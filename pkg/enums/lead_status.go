package enums

import (
	"fmt"
	"strings"
)

// LeadStatus tracks where a lead sits in the sales lifecycle.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusQuoted    LeadStatus = "QUOTED"
	LeadStatusPaid      LeadStatus = "PAID"
	LeadStatusCompleted LeadStatus = "COMPLETED"
	LeadStatusCancelled LeadStatus = "CANCELLED"
)

// validLeadStatuses is ordered by lifecycle rank.
var validLeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusQuoted,
	LeadStatusPaid,
	LeadStatusCompleted,
	LeadStatusCancelled,
}

func (s LeadStatus) String() string {
	return string(s)
}

func (s LeadStatus) IsValid() bool {
	return s.Rank() >= 0
}

// Rank orders statuses NEW < QUOTED < PAID < COMPLETED < CANCELLED; unknown values return -1.
func (s LeadStatus) Rank() int {
	for i, candidate := range validLeadStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseLeadStatus accepts any casing of a known status.
func ParseLeadStatus(value string) (LeadStatus, error) {
	normalized := LeadStatus(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid lead status %q", value)
}

func LeadStatuses() []LeadStatus {
	return append([]LeadStatus(nil), validLeadStatuses...)
}
