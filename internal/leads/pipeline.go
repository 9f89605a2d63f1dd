package leads

import (
	"sort"
	"strings"

	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
)

// Filter holds the list view controls. Empty Status/Urgency match everything.
type Filter struct {
	Search  string
	Status  enums.LeadStatus
	Urgency enums.Urgency
	Sort    enums.LeadSort
}

// ParseFilter builds a Filter from raw query values. "all" disables a filter.
func ParseFilter(search, status, urgency, sortKey string) (Filter, error) {
	f := Filter{Search: strings.TrimSpace(search)}
	if s := strings.TrimSpace(status); s != "" && !strings.EqualFold(s, "all") {
		parsed, err := enums.ParseLeadStatus(s)
		if err != nil {
			return Filter{}, err
		}
		f.Status = parsed
	}
	if u := strings.TrimSpace(urgency); u != "" && !strings.EqualFold(u, "all") {
		parsed, err := enums.ParseUrgency(u)
		if err != nil {
			return Filter{}, err
		}
		f.Urgency = parsed
	}
	parsedSort, err := enums.ParseLeadSort(sortKey)
	if err != nil {
		return Filter{}, err
	}
	f.Sort = parsedSort
	return f, nil
}

// Apply returns the leads that pass the filter in the requested order. The
// input slice is never modified.
func Apply(leads []LeadDTO, f Filter) []LeadDTO {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]LeadDTO, 0, len(leads))
	for _, lead := range leads {
		if f.Status != "" && lead.Status != f.Status {
			continue
		}
		if f.Urgency != "" && lead.Urgency != f.Urgency {
			continue
		}
		if needle != "" && !matchesSearch(lead, needle) {
			continue
		}
		out = append(out, lead)
	}

	switch f.Sort {
	case enums.LeadSortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case enums.LeadSortUrgency:
		sort.SliceStable(out, func(i, j int) bool { return rank(out[i].Urgency.Rank()) < rank(out[j].Urgency.Rank()) })
	case enums.LeadSortStatus:
		sort.SliceStable(out, func(i, j int) bool { return rank(out[i].Status.Rank()) < rank(out[j].Status.Rank()) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

func matchesSearch(lead LeadDTO, needle string) bool {
	for _, field := range []string{lead.FullName(), lead.Phone, lead.ID, lead.Vehicle()} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// rank pushes unknown enum values (-1) after every known one.
func rank(r int) int {
	if r < 0 {
		return 1 << 30
	}
	return r
}
