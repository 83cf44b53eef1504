package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegistrationStatus string

const (
	StatusPendingPayment    RegistrationStatus = "pending_payment"
	StatusVerified          RegistrationStatus = "verified"
	StatusRejected          RegistrationStatus = "rejected"
	StatusCompleted         RegistrationStatus = "completed"
	StatusDuplicateRejected RegistrationStatus = "duplicate_rejected"
)

// Active reports whether the registration holds a seat and blocks the
// same identity from registering again.
func (s RegistrationStatus) Active() bool {
	return s != StatusRejected && s != StatusDuplicateRejected
}

type VerificationStatus string

const (
	VerificationNotRequired VerificationStatus = "not_required"
	VerificationPending     VerificationStatus = "pending"
	VerificationVerified    VerificationStatus = "verified"
	VerificationRejected    VerificationStatus = "rejected"
)

type VerificationMethod string

const (
	MethodNone           VerificationMethod = "none"
	MethodManual         VerificationMethod = "manual"
	MethodStatementMatch VerificationMethod = "statement_match"
)

// IdentityIndexName is the partial unique index on (event_id, identity_key)
// over active registrations.
const IdentityIndexName = "idx_registration_active_identity"

type Registration struct {
	ID                   uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	EventID              uint               `gorm:"not null;index" json:"event_id"`
	UserID               *string            `json:"user_id,omitempty"`
	Email                string             `gorm:"not null" json:"email"`
	Name                 string             `json:"name"`
	IdentityKey          *string            `json:"-"`
	Answers              Answers            `gorm:"serializer:json;type:jsonb" json:"answers"`
	PricePaid            decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"price_paid"`
	Status               RegistrationStatus `gorm:"type:varchar(24);not null;index" json:"status"`
	PaymentProof         PaymentProof       `gorm:"embedded;embeddedPrefix:proof_" json:"payment_proof"`
	TicketCode           *string            `json:"ticket_code,omitempty"`
	TicketIssuedAt       *time.Time         `json:"ticket_issued_at,omitempty"`
	FulfillmentClaimedAt *time.Time         `json:"-"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

type PaymentProof struct {
	ScreenshotRef      string             `json:"screenshot_ref,omitempty"`
	UTR                string             `json:"utr,omitempty"`
	NormalizedUTR      string             `gorm:"index" json:"-"`
	Amount             decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"amount"`
	UploadedAt         *time.Time         `json:"uploaded_at,omitempty"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;index" json:"verification_status"`
	VerificationMethod VerificationMethod `gorm:"type:varchar(20);not null;default:'none'" json:"verification_method"`
	RejectionReason    string             `json:"rejection_reason,omitempty"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	VerifiedBy         string             `json:"verified_by,omitempty"`
}

// NormalizeUTR produces the comparison key for a transaction reference.
func NormalizeUTR(utr string) string {
	return strings.ToUpper(strings.TrimSpace(utr))
}

// NormalizeEmail produces the identity key for an attendee email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Summary is the public view returned when an attendee is already registered.
// It never carries ids or ticket codes.
type Summary struct {
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

func (r *Registration) Summary() Summary {
	return Summary{Status: r.Status, CreatedAt: r.CreatedAt}
}

// TicketIssued reports whether the completion side effect already ran.
func (r *Registration) TicketIssued() bool {
	return r.TicketCode != nil
}
