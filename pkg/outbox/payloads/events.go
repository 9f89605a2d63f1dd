package payloads

import (
	"time"

	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
)

// LeadCreatedEvent is emitted when the intake form creates a lead.
type LeadCreatedEvent struct {
	LeadID    string        `json:"lead_id"`
	FullName  string        `json:"full_name"`
	Phone     string        `json:"phone"`
	Vehicle   string        `json:"vehicle"`
	Urgency   enums.Urgency `json:"urgency"`
	CreatedAt time.Time     `json:"created_at"`
}

// LeadMessageAppendedEvent is emitted for every message added to a thread.
type LeadMessageAppendedEvent struct {
	LeadID       string              `json:"lead_id"`
	MessageID    string              `json:"message_id"`
	Sender       enums.MessageSender `json:"sender"`
	MessageCount int                 `json:"message_count"`
}

// LeadQuoteSentEvent carries the final quote delivered to the customer.
type LeadQuoteSentEvent struct {
	LeadID         string `json:"lead_id"`
	Phone          string `json:"phone"`
	MessageContent string `json:"message_content"`
}

type LeadStatusChangedEvent struct {
	LeadID string           `json:"lead_id"`
	From   enums.LeadStatus `json:"from"`
	To     enums.LeadStatus `json:"to"`
}

// LeadQuoteOverdueEvent flags a quote that has gone unanswered past the threshold.
type LeadQuoteOverdueEvent struct {
	LeadID     string        `json:"lead_id"`
	QuotedAt   time.Time     `json:"quoted_at"`
	Age        time.Duration `json:"age_ns"`
	DetectedAt time.Time     `json:"detected_at"`
}
