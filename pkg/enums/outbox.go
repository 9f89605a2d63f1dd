package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateLead OutboxAggregateType = "lead"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateLead,
}

func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType is the lead activity published to the event bus.
type OutboxEventType string

const (
	EventLeadCreated         OutboxEventType = "lead.created"
	EventLeadMessageAppended OutboxEventType = "lead.message_appended"
	EventLeadQuoteSent       OutboxEventType = "lead.quote_sent"
	EventLeadStatusChanged   OutboxEventType = "lead.status_changed"
	EventLeadQuoteOverdue    OutboxEventType = "lead.quote_overdue"
)

var validOutboxEventTypes = []OutboxEventType{
	EventLeadCreated,
	EventLeadMessageAppended,
	EventLeadQuoteSent,
	EventLeadStatusChanged,
	EventLeadQuoteOverdue,
}

func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
