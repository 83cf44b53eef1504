package dto

import (
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/shopspring/decimal"
)

type SubmitRegistrationRequest struct {
	UserID  *string        `json:"user_id" validate:"omitempty,max=128"`
	Email   string         `json:"email" validate:"omitempty,max=254"`
	Name    string         `json:"name" validate:"max=200"`
	Answers models.Answers `json:"answers"`
}

type ValidatePageRequest struct {
	Answers models.Answers `json:"answers"`
}

type PaymentProofRequest struct {
	UTR           string           `json:"utr" validate:"required,max=64,utr"`
	Amount        *decimal.Decimal `json:"amount"`
	ScreenshotRef string           `json:"screenshot_ref" validate:"max=512"`
}

type VerificationRequest struct {
	Outcome    string `json:"outcome" validate:"required,decision"`
	Reason     string `json:"reason" validate:"max=500"`
	VerifiedBy string `json:"verified_by" validate:"max=200"`
	// Force approves despite an amount mismatch.
	Force bool `json:"force"`
}

type ReconcileRequest struct {
	StatementText     string `json:"statementText" validate:"required"`
	EventID           *uint  `json:"eventId"`
	Apply             bool   `json:"apply"`
	ConfirmDuplicates bool   `json:"confirmDuplicates"`
	Operator          string `json:"operator" validate:"max=200"`
}
