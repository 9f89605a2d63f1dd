package leads

import (
	"math"
	"time"

	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
)

const (
	followUpLimit = 3
	OverdueAfter  = 24 * time.Hour
	statsWeek     = 7 * 24 * time.Hour
)

// FollowUps are the quick-action buckets shown above the lead list.
type FollowUps struct {
	Urgent         []LeadDTO `json:"urgent"`
	Overdue        []LeadDTO `json:"overdue"`
	RecentPayments []LeadDTO `json:"recent_payments"`
}

// IsOverdue reports whether a quoted lead has waited longer than OverdueAfter.
func IsOverdue(lead LeadDTO, now time.Time) bool {
	return lead.Status == enums.LeadStatusQuoted && now.Sub(lead.CreatedAt) > OverdueAfter
}

// BuildFollowUps buckets leads in input order, at most three per bucket.
func BuildFollowUps(leads []LeadDTO, now time.Time) FollowUps {
	out := FollowUps{
		Urgent:         []LeadDTO{},
		Overdue:        []LeadDTO{},
		RecentPayments: []LeadDTO{},
	}
	for _, lead := range leads {
		if lead.Urgency.IsHot() && lead.Status == enums.LeadStatusNew && len(out.Urgent) < followUpLimit {
			out.Urgent = append(out.Urgent, lead)
		}
		if IsOverdue(lead, now) && len(out.Overdue) < followUpLimit {
			out.Overdue = append(out.Overdue, lead)
		}
		if lead.Status == enums.LeadStatusPaid && len(out.RecentPayments) < followUpLimit {
			out.RecentPayments = append(out.RecentPayments, lead)
		}
	}
	return out
}

// Stats are the dashboard counters.
type Stats struct {
	Total           int `json:"total"`
	New             int `json:"new"`
	Quoted          int `json:"quoted"`
	Paid            int `json:"paid"`
	Completed       int `json:"completed"`
	Cancelled       int `json:"cancelled"`
	ThisWeek        int `json:"this_week"`
	Urgent          int `json:"urgent"`
	ConversionRate  int `json:"conversion_rate"`
	RevenuePipeline int `json:"revenue_pipeline"`
}

// EstimatedTicket is the flat per-job value used for the revenue pipeline.
const EstimatedTicket = 150

func ComputeStats(leads []LeadDTO, now time.Time) Stats {
	weekStart := now.Add(-statsWeek)
	var s Stats
	s.Total = len(leads)
	for _, lead := range leads {
		switch lead.Status {
		case enums.LeadStatusNew:
			s.New++
		case enums.LeadStatusQuoted:
			s.Quoted++
		case enums.LeadStatusPaid:
			s.Paid++
		case enums.LeadStatusCompleted:
			s.Completed++
		case enums.LeadStatusCancelled:
			s.Cancelled++
		}
		if !lead.CreatedAt.Before(weekStart) {
			s.ThisWeek++
		}
		if lead.Urgency.IsHot() {
			s.Urgent++
		}
	}
	if s.Total > 0 {
		s.ConversionRate = int(math.Round(float64(s.Paid+s.Completed) / float64(s.Total) * 100))
	}
	s.RevenuePipeline = (s.Quoted + s.Paid) * EstimatedTicket
	return s
}
