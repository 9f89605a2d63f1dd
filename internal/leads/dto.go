package leads

import (
	"strings"
	"time"

	"github.com/bizzyglass/bizzyglass-backend/pkg/db/models"
	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
)

// LeadDTO is the wire shape of a lead. Field names follow the web form.
type LeadDTO struct {
	ID                string           `json:"id"`
	FirstName         string           `json:"firstName"`
	LastName          string           `json:"lastName"`
	Phone             string           `json:"phone"`
	Email             string           `json:"email"`
	Make              string           `json:"make"`
	Model             string           `json:"model"`
	Year              string           `json:"year"`
	BodyType          string           `json:"bodyType"`
	VIN               *string          `json:"vin,omitempty"`
	DamageDescription string           `json:"damageDescription"`
	AdditionalNotes   *string          `json:"additionalNotes,omitempty"`
	Urgency           enums.Urgency    `json:"urgency"`
	Status            enums.LeadStatus `json:"status"`
	GlassItems        []string         `json:"glassItems,omitempty"`
	AddonServices     []string         `json:"addonServices,omitempty"`
	PreferredSlots    []string         `json:"preferredSlots,omitempty"`
	Messages          []MessageDTO     `json:"messages"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

type MessageDTO struct {
	ID        string              `json:"id"`
	Sender    enums.MessageSender `json:"sender"`
	Message   string              `json:"message"`
	Timestamp time.Time           `json:"timestamp"`
}

// FullName joins first and last name with a single space.
func (l LeadDTO) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(l.FirstName) + " " + strings.TrimSpace(l.LastName))
}

// Vehicle is the "make model" string the search box matches against.
func (l LeadDTO) Vehicle() string {
	return strings.TrimSpace(l.Make + " " + l.Model)
}

// CreateLeadRequest is the intake form payload, validated per wizard step:
// contact, vehicle, then damage and urgency.
type CreateLeadRequest struct {
	FirstName string `json:"firstName" validate:"required,max=80"`
	LastName  string `json:"lastName" validate:"required,max=80"`
	Phone     string `json:"phone" validate:"required,min=7,max=32"`
	Email     string `json:"email" validate:"required,email"`

	Make     string `json:"make" validate:"required,max=60"`
	Model    string `json:"model" validate:"required,max=60"`
	Year     string `json:"year" validate:"required,numeric,len=4"`
	BodyType string `json:"bodyType" validate:"required,max=40"`
	VIN      string `json:"vin,omitempty" validate:"omitempty,alphanum,max=17"`

	DamageDescription string        `json:"damageDescription" validate:"required,max=2000"`
	Urgency           enums.Urgency `json:"urgency" validate:"required,oneof=emergency urgent soon flexible"`
	AdditionalNotes   string        `json:"additionalNotes,omitempty" validate:"max=2000"`

	GlassItems     []string `json:"glassItems,omitempty" validate:"max=20,dive,max=80"`
	AddonServices  []string `json:"addonServices,omitempty" validate:"max=20,dive,max=80"`
	PreferredSlots []string `json:"preferredSlots,omitempty" validate:"max=10,dive,max=80"`
}

type AddMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type SendFinalQuoteRequest struct {
	LeadID         string `json:"lead_id" validate:"required"`
	MessageContent string `json:"message_content" validate:"required,max=8000"`
}

type UpdateStatusRequest struct {
	Status enums.LeadStatus `json:"status" validate:"required,oneof=NEW QUOTED PAID COMPLETED CANCELLED"`
}

// FromModel maps the persisted lead into a DTO.
func FromModel(m *models.Lead) *LeadDTO {
	if m == nil {
		return nil
	}
	dto := &LeadDTO{
		ID:                m.ID,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Phone:             m.Phone,
		Email:             m.Email,
		Make:              m.Make,
		Model:             m.Model,
		Year:              m.Year,
		BodyType:          m.BodyType,
		VIN:               m.VIN,
		DamageDescription: m.DamageDescription,
		AdditionalNotes:   m.AdditionalNotes,
		Urgency:           m.Urgency,
		Status:            m.Status,
		GlassItems:        append([]string(nil), m.GlassItems...),
		AddonServices:     append([]string(nil), m.AddonServices...),
		PreferredSlots:    append([]string(nil), m.PreferredSlots...),
		Messages:          make([]MessageDTO, 0, len(m.Messages)),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, msg := range m.Messages {
		dto.Messages = append(dto.Messages, MessageDTO{
			ID:        msg.ID,
			Sender:    msg.Sender,
			Message:   msg.Message,
			Timestamp: msg.Timestamp,
		})
	}
	return dto
}

// FromModels maps a slice of persisted leads.
func FromModels(rows []models.Lead) []LeadDTO {
	out := make([]LeadDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (r CreateLeadRequest) toModel(id string, now time.Time, firstMessage models.LeadMessage) *models.Lead {
	lead := &models.Lead{
		ID:                id,
		FirstName:         strings.TrimSpace(r.FirstName),
		LastName:          strings.TrimSpace(r.LastName),
		Phone:             strings.TrimSpace(r.Phone),
		Email:             strings.ToLower(strings.TrimSpace(r.Email)),
		Make:              strings.TrimSpace(r.Make),
		Model:             strings.TrimSpace(r.Model),
		Year:              strings.TrimSpace(r.Year),
		BodyType:          strings.TrimSpace(r.BodyType),
		DamageDescription: strings.TrimSpace(r.DamageDescription),
		Urgency:           r.Urgency,
		Status:            enums.LeadStatusNew,
		GlassItems:        r.GlassItems,
		AddonServices:     r.AddonServices,
		PreferredSlots:    r.PreferredSlots,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	lead.Messages = lead.Messages.Append(firstMessage)
	if vin := strings.ToUpper(strings.TrimSpace(r.VIN)); vin != "" {
		lead.VIN = &vin
	}
	if notes := strings.TrimSpace(r.AdditionalNotes); notes != "" {
		lead.AdditionalNotes = &notes
	}
	return lead
}
