package leads

import (
	"fmt"
	"time"

	dbtypes "github.com/bizzyglass/bizzyglass-backend/pkg/db/types"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db/models"
	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
)

type seedMessage struct {
	sender enums.MessageSender
	text   string
	ago    time.Duration
}

type seedLead struct {
	lead     models.Lead
	ago      time.Duration
	messages []seedMessage
}

var demoLeads = []seedLead{
	{
		lead: models.Lead{
			ID: "GLS-001", FirstName: "John", LastName: "Smith", Phone: "(555) 123-4567", Email: "john@example.com",
			Make: "Toyota", Model: "Camry", Year: "2020", BodyType: "Sedan", Urgency: enums.UrgencyUrgent,
			DamageDescription: "Large crack in windshield from road debris, spreading across driver view",
			Status:            enums.LeadStatusNew,
		},
		ago: 2 * time.Hour,
		messages: []seedMessage{
			{enums.SenderCustomer, "Hi, I need my windshield replaced ASAP. The crack is getting worse.", 2 * time.Hour},
		},
	},
	{
		lead: models.Lead{
			ID: "GLS-002", FirstName: "Sarah", LastName: "Johnson", Phone: "(555) 987-6543", Email: "sarah@example.com",
			Make: "Honda", Model: "CR-V", Year: "2019", BodyType: "SUV", Urgency: enums.UrgencySoon,
			DamageDescription: "Small chip in windshield, passenger side. Want to fix before it spreads.",
			Status:            enums.LeadStatusQuoted,
		},
		ago: 24 * time.Hour,
		messages: []seedMessage{
			{enums.SenderCustomer, "Looking for a quote on windshield repair for a small chip", 24 * time.Hour},
			{enums.SenderOwner, "Thanks for contacting us! I can repair that chip for $85. When would work best for you?", 23 * time.Hour},
		},
	},
	{
		lead: models.Lead{
			ID: "GLS-003", FirstName: "Mike", LastName: "Wilson", Phone: "(555) 456-7890", Email: "mike@example.com",
			Make: "Ford", Model: "F-150", Year: "2021", BodyType: "Truck", Urgency: enums.UrgencyEmergency,
			DamageDescription: "Completely shattered windshield from accident. Cannot drive safely.",
			Status:            enums.LeadStatusNew,
		},
		ago: 30 * time.Minute,
		messages: []seedMessage{
			{enums.SenderCustomer, "EMERGENCY: My windshield is completely shattered. Need immediate replacement!", 30 * time.Minute},
		},
	},
	{
		lead: models.Lead{
			ID: "GLS-004", FirstName: "Emily", LastName: "Davis", Phone: "(555) 321-0987", Email: "emily@example.com",
			Make: "BMW", Model: "X3", Year: "2018", BodyType: "SUV", Urgency: enums.UrgencyFlexible,
			DamageDescription: "Side window replacement needed. Non-urgent.",
			Status:            enums.LeadStatusPaid,
		},
		ago: 72 * time.Hour,
		messages: []seedMessage{
			{enums.SenderCustomer, "Need side window replaced when convenient", 72 * time.Hour},
			{enums.SenderOwner, "I can replace that for $180. How does Thursday afternoon work?", 72 * time.Hour},
			{enums.SenderCustomer, "Perfect! Payment sent.", 48 * time.Hour},
		},
	},
}

// DemoLeads returns the four sample leads with timestamps relative to now.
func DemoLeads(now time.Time) []models.Lead {
	out := make([]models.Lead, 0, len(demoLeads))
	for _, seed := range demoLeads {
		lead := seed.lead
		lead.CreatedAt = now.Add(-seed.ago)
		lead.UpdatedAt = lead.CreatedAt
		lead.GlassItems = dbtypes.JSONList[string]{}
		lead.AddonServices = dbtypes.JSONList[string]{}
		lead.PreferredSlots = dbtypes.JSONList[string]{}
		lead.Messages = make(dbtypes.JSONList[models.LeadMessage], 0, len(seed.messages))
		for i, msg := range seed.messages {
			lead.Messages = append(lead.Messages, models.LeadMessage{
				ID:        fmt.Sprintf("%s-m%d", lead.ID, i+1),
				Sender:    msg.sender,
				Message:   msg.text,
				Timestamp: now.Add(-msg.ago),
			})
		}
		out = append(out, lead)
	}
	return out
}

// DemoLeadDTOs is DemoLeads in wire form, used as the dashboard's offline fallback.
func DemoLeadDTOs(now time.Time) []LeadDTO {
	return FromModels(DemoLeads(now))
}
