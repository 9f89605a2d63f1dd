package models

import (
	"time"

	dbtypes "github.com/bizzyglass/bizzyglass-backend/pkg/db/types"
	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
)

// Lead is a prospective customer's service request.
type Lead struct {
	ID                string                        `gorm:"column:id;primaryKey"`
	FirstName         string                        `gorm:"column:first_name;not null"`
	LastName          string                        `gorm:"column:last_name;not null"`
	Phone             string                        `gorm:"column:phone;not null;uniqueIndex"`
	Email             string                        `gorm:"column:email;not null"`
	Make              string                        `gorm:"column:make;not null"`
	Model             string                        `gorm:"column:model;not null"`
	Year              string                        `gorm:"column:year;not null"`
	BodyType          string                        `gorm:"column:body_type;not null"`
	VIN               *string                       `gorm:"column:vin"`
	DamageDescription string                        `gorm:"column:damage_description;not null"`
	AdditionalNotes   *string                       `gorm:"column:additional_notes"`
	Urgency           enums.Urgency                 `gorm:"column:urgency;not null"`
	Status            enums.LeadStatus              `gorm:"column:status;not null;default:NEW"`
	GlassItems        dbtypes.JSONList[string]      `gorm:"column:glass_items;not null"`
	AddonServices     dbtypes.JSONList[string]      `gorm:"column:addon_services;not null"`
	PreferredSlots    dbtypes.JSONList[string]      `gorm:"column:preferred_slots;not null"`
	Messages          dbtypes.JSONList[LeadMessage] `gorm:"column:messages;not null"`
	CreatedAt         time.Time                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Lead) TableName() string { return "leads" }

// LeadMessage is one entry of a lead's append-only thread.
type LeadMessage struct {
	ID        string              `json:"id"`
	Sender    enums.MessageSender `json:"sender"`
	Message   string              `json:"message"`
	Timestamp time.Time           `json:"timestamp"`
}
