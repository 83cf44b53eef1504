package dto

import (
	"time"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegistrationResponse struct {
	ID           uuid.UUID                 `json:"id"`
	EventID      uint                      `json:"event_id"`
	Email        string                    `json:"email"`
	Name         string                    `json:"name"`
	Status       models.RegistrationStatus `json:"status"`
	State        string                    `json:"state"`
	PricePaid    decimal.Decimal           `json:"price_paid"`
	Answers      models.Answers            `json:"answers"`
	PaymentProof models.PaymentProof       `json:"payment_proof"`
	TicketCode   *string                   `json:"ticket_code,omitempty"`
	Payment      *PaymentInstructions      `json:"payment,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// PaymentInstructions tells an attendee where to pay and what to upload.
type PaymentInstructions struct {
	UpiID            string          `json:"upi_id"`
	UpiName          string          `json:"upi_name"`
	Amount           decimal.Decimal `json:"amount"`
	VerificationNote string          `json:"verification_note,omitempty"`
}

type CheckResponse struct {
	AlreadyRegistered bool            `json:"alreadyRegistered"`
	State             string          `json:"state"`
	Registration      *models.Summary `json:"registration,omitempty"`
}

type ValidPageResponse struct {
	Valid bool `json:"valid"`
}

type LimitReachedResponse struct {
	LimitReached bool   `json:"limitReached"`
	Message      string `json:"message"`
}

type FieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type PendingProofResponse struct {
	Registration   RegistrationResponse `json:"registration"`
	IsDuplicateUTR bool                 `json:"is_duplicate_utr"`
}

type PendingPageResponse struct {
	Payments []PendingProofResponse `json:"payments"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	Pages    int                    `json:"pages"`
}

type ReviewResponse struct {
	Registration RegistrationResponse `json:"registration"`
	Warnings     []string             `json:"warnings,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToRegistrationResponse(r *models.Registration, state service.FlowState) RegistrationResponse {
	resp := RegistrationResponse{
		ID:           r.ID,
		EventID:      r.EventID,
		Email:        r.Email,
		Name:         r.Name,
		Status:       r.Status,
		PricePaid:    r.PricePaid,
		Answers:      r.Answers,
		PaymentProof: r.PaymentProof,
		TicketCode:   r.TicketCode,
		CreatedAt:    r.CreatedAt,
	}
	if state == nil {
		state = service.StateOf(r, nil)
	}
	resp.State = state.Name()
	if awaiting, ok := state.(service.AwaitingPayment); ok && awaiting.Payment.Enabled {
		resp.Payment = &PaymentInstructions{
			UpiID:            awaiting.Payment.UpiID,
			UpiName:          awaiting.Payment.UpiName,
			Amount:           r.PricePaid,
			VerificationNote: awaiting.Payment.VerificationNote,
		}
	}
	return resp
}
