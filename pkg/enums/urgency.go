package enums

import (
	"fmt"
	"strings"
)

// Urgency is the customer-declared scheduling priority.
type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencySoon      Urgency = "soon"
	UrgencyFlexible  Urgency = "flexible"
)

var validUrgencies = []Urgency{
	UrgencyEmergency,
	UrgencyUrgent,
	UrgencySoon,
	UrgencyFlexible,
}

func (u Urgency) String() string {
	return string(u)
}

func (u Urgency) IsValid() bool {
	return u.Rank() >= 0
}

// Rank returns 0 for emergency through 3 for flexible, -1 when unknown.
func (u Urgency) Rank() int {
	for i, candidate := range validUrgencies {
		if candidate == u {
			return i
		}
	}
	return -1
}

// IsHot reports whether the urgency needs same-day attention.
func (u Urgency) IsHot() bool {
	return u == UrgencyEmergency || u == UrgencyUrgent
}

func ParseUrgency(value string) (Urgency, error) {
	normalized := Urgency(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid urgency %q", value)
}
