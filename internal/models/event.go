package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventActive EventStatus = "active"
	EventClosed EventStatus = "closed"
	EventDraft  EventStatus = "draft"
)

// Event is the local replica of a catalog event. The engine never writes it
// except when syncing from catalog messages.
type Event struct {
	ID                         uint            `gorm:"primaryKey" json:"id"`
	Name                       string          `gorm:"not null" json:"name"`
	Slug                       string          `json:"slug"`
	Status                     EventStatus     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	MaxRegistrations           int             `gorm:"not null;default:0" json:"max_registrations"`
	AllowMultipleRegistrations bool            `gorm:"not null;default:false" json:"allow_multiple_registrations"`
	Price                      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	PaymentConfig              PaymentConfig   `gorm:"embedded;embeddedPrefix:payment_" json:"payment_config"`
	FormSchema                 []FormField     `gorm:"serializer:json;type:jsonb" json:"form_schema"`
	SendConfirmationEmail      bool            `gorm:"not null;default:true" json:"send_confirmation_email"`
	RegistrationCloseAt        *time.Time      `json:"registration_close_at,omitempty"`
	RegistrationPaused         bool            `gorm:"not null;default:false" json:"registration_paused"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// PaymentConfig describes where attendees send money for paid events.
type PaymentConfig struct {
	Enabled           bool   `json:"enabled"`
	UpiID             string `json:"upi_id"`
	UpiName           string `json:"upi_name"`
	VerificationNote  string `json:"verification_note"`
	AutoVerifyEnabled bool   `json:"auto_verify_enabled"`
}

// IsFree reports whether registrations complete without a payment proof.
func (e *Event) IsFree() bool {
	return !e.Price.IsPositive()
}

// ClosedAt reports whether the event stopped accepting registrations at t.
func (e *Event) ClosedAt(t time.Time) bool {
	if e.Status == EventClosed || e.Status == EventDraft || e.RegistrationPaused {
		return true
	}
	return e.RegistrationCloseAt != nil && t.After(*e.RegistrationCloseAt)
}

// PlanLimits is a snapshot of the host's plan taken for a single operation.
type PlanLimits struct {
	MaxAttendeesPerEvent int `json:"max_attendees_per_event"`
}

// EffectiveCapacity combines the event cap and the plan cap. Zero means unlimited.
func (e *Event) EffectiveCapacity(limits PlanLimits) int {
	capacity := e.MaxRegistrations
	if limits.MaxAttendeesPerEvent > 0 && (capacity == 0 || limits.MaxAttendeesPerEvent < capacity) {
		capacity = limits.MaxAttendeesPerEvent
	}
	if capacity < 0 {
		return 0
	}
	return capacity
}
