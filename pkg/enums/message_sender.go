package enums

import (
	"fmt"
	"strings"
)

// MessageSender identifies who authored a lead message.
type MessageSender string

const (
	SenderCustomer MessageSender = "customer"
	SenderOwner    MessageSender = "owner"
	SenderSystem   MessageSender = "system"

	legacySenderClient = "client"
)

var validMessageSenders = []MessageSender{
	SenderCustomer,
	SenderOwner,
	SenderSystem,
}

func (s MessageSender) String() string {
	return string(s)
}

func (s MessageSender) IsValid() bool {
	for _, candidate := range validMessageSenders {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMessageSender maps the legacy "client" sender onto customer.
func ParseMessageSender(value string) (MessageSender, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == legacySenderClient {
		return SenderCustomer, nil
	}
	if sender := MessageSender(normalized); sender.IsValid() {
		return sender, nil
	}
	return "", fmt.Errorf("invalid message sender %q", value)
}
