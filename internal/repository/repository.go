package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrCapacityReached = errors.New("event capacity reached")
	// ErrStateConflict means a conditional update found the row in another state.
	ErrStateConflict = errors.New("registration state changed concurrently")
)

// DuplicateError is returned by Create when the attendee already holds an
// active registration for the event.
type DuplicateError struct {
	Existing *models.Registration
}

func (e *DuplicateError) Error() string {
	if e.Existing == nil {
		return "registration already exists"
	}
	return fmt.Sprintf("registration already exists: %s", e.Existing.ID)
}

// CreateGuard holds the checks Create runs atomically with the insert.
type CreateGuard struct {
	// Capacity caps active registrations for the event. Zero means unlimited.
	Capacity int
	// UniqueIdentity rejects a second active registration with the same email.
	UniqueIdentity bool
}

type ProofUpdate struct {
	ScreenshotRef string
	UTR           string
	NormalizedUTR string
	Amount        decimal.Decimal
	UploadedAt    time.Time
}

// PendingQuery selects one page of proofs awaiting a decision.
type PendingQuery struct {
	EventID *uint
	Offset  int
	Limit   int
}

// VerificationUpdate is applied by CASVerificationStatus.
type VerificationUpdate struct {
	Status             models.VerificationStatus
	Method             models.VerificationMethod
	RegistrationStatus models.RegistrationStatus
	RejectionReason    string
	VerifiedBy         string
	At                 time.Time
}

//go:generate mockgen -destination=mocks/mock_repository.go -package=mock_repository -source=repository.go

type EventRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	Upsert(ctx context.Context, event *models.Event) error
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration, guard CreateGuard) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	FindActiveByEventAndEmail(ctx context.Context, eventID uint, email string) (*models.Registration, error)
	CountActiveByEvent(ctx context.Context, eventID uint) (int64, error)
	AttachPaymentProof(ctx context.Context, id uuid.UUID, proof ProofUpdate) (*models.Registration, error)
	CASVerificationStatus(ctx context.Context, id uuid.UUID, expected models.VerificationStatus, upd VerificationUpdate) (*models.Registration, error)
	ListPendingPaymentsWithUTR(ctx context.Context, eventID *uint) ([]models.Registration, error)
	ListPendingPaymentsPage(ctx context.Context, q PendingQuery) ([]models.Registration, int64, error)
	ListByNormalizedUTR(ctx context.Context, utrs []string) ([]models.Registration, error)
	ClaimFulfillment(ctx context.Context, id uuid.UUID, staleAfter time.Duration) (bool, error)
	ReleaseFulfillment(ctx context.Context, id uuid.UUID) error
	MarkTicketIssued(ctx context.Context, id uuid.UUID, code string, at time.Time) error
	ListUnfulfilled(ctx context.Context, olderThan time.Time, limit int) ([]models.Registration, error)
}

var inactiveStatuses = []models.RegistrationStatus{models.StatusRejected, models.StatusDuplicateRejected}
