package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/reconcile"
	"github.com/Eursukkul/registration-engine/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type ProofInput struct {
	ScreenshotRef string
	UTR           string
	// Amount defaults to the ticket price when nil.
	Amount *decimal.Decimal
}

type PendingProof struct {
	Registration   models.Registration `json:"registration"`
	IsDuplicateUTR bool                `json:"is_duplicate_utr"`
}

const (
	DefaultPendingLimit = 20
	MaxPendingLimit     = 100
)

// PendingFilter pages through pending proofs. Page starts at 1.
type PendingFilter struct {
	EventID *uint
	Page    int
	Limit   int
}

type PendingPage struct {
	Payments []PendingProof `json:"payments"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	Pages    int            `json:"pages"`
}

type PaymentService interface {
	AttachProof(ctx context.Context, registrationID uuid.UUID, in ProofInput) (*models.Registration, error)
	ListPending(ctx context.Context, f PendingFilter) (*PendingPage, error)
}

type paymentService struct {
	regs   repository.RegistrationRepository
	events repository.EventRepository
	opts   Options
	log    *zerolog.Logger
	now    func() time.Time
}

func NewPaymentService(regs repository.RegistrationRepository, events repository.EventRepository, opts Options, logger *zerolog.Logger) PaymentService {
	return &paymentService{
		regs:   regs,
		events: events,
		opts:   opts,
		log:    logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AttachProof records the attendee's payment claim. It never verifies; a
// second upload while verification is pending replaces the first.
func (s *paymentService) AttachProof(ctx context.Context, registrationID uuid.UUID, in ProofInput) (*models.Registration, error) {
	utr := strings.TrimSpace(in.UTR)
	if utr == "" {
		return nil, inputError("utr", "UTR is required")
	}
	if in.Amount != nil && in.Amount.IsNegative() {
		return nil, inputError("amount", "Amount cannot be negative")
	}

	reg, err := s.regs.FindByID(ctx, registrationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, reg.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	if !event.IsFree() && !event.PaymentConfig.Enabled {
		return nil, ErrPaymentsDisabled
	}

	amount := reg.PricePaid
	if in.Amount != nil {
		amount = *in.Amount
	}
	proof := repository.ProofUpdate{
		ScreenshotRef: strings.TrimSpace(in.ScreenshotRef),
		UTR:           utr,
		NormalizedUTR: models.NormalizeUTR(utr),
		Amount:        amount,
		UploadedAt:    s.now(),
	}

	var updated *models.Registration
	err = withRetry(ctx, s.log, "attach_proof", s.opts.RetryBackoff, func() error {
		var err error
		updated, err = s.regs.AttachPaymentProof(ctx, registrationID, proof)
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrStateConflict):
		return nil, ErrInvalidState
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrRegistrationNotFound
	default:
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	s.log.Info().
		Str("registration_id", registrationID.String()).
		Str("utr", proof.NormalizedUTR).
		Msg("payment proof attached")
	return updated, nil
}

// ListPending returns one page of proofs awaiting a decision, each flagged
// when its UTR is shared with any other pending or verified proof on the
// platform.
func (s *paymentService) ListPending(ctx context.Context, f PendingFilter) (*PendingPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPendingLimit
	case f.Limit > MaxPendingLimit:
		f.Limit = MaxPendingLimit
	}

	pending, total, err := s.regs.ListPendingPaymentsPage(ctx, repository.PendingQuery{
		EventID: f.EventID,
		Offset:  (f.Page - 1) * f.Limit,
		Limit:   f.Limit,
	})
	if err != nil {
		return nil, err
	}
	flags, err := duplicateFlags(ctx, s.regs, pending)
	if err != nil {
		return nil, err
	}

	out := make([]PendingProof, 0, len(pending))
	for _, reg := range pending {
		out = append(out, PendingProof{Registration: reg, IsDuplicateUTR: flags[reg.ID]})
	}
	return &PendingPage{
		Payments: out,
		Total:    total,
		Page:     f.Page,
		Pages:    int((total + int64(f.Limit) - 1) / int64(f.Limit)),
	}, nil
}

func duplicateFlags(ctx context.Context, regs repository.RegistrationRepository, pending []models.Registration) (map[uuid.UUID]bool, error) {
	scope, err := loadDuplicateScope(ctx, regs, pending)
	if err != nil {
		return nil, err
	}
	return reconcile.DuplicateUTRs(scope), nil
}

// loadDuplicateScope fetches every pending or verified proof on the
// platform that shares a UTR with one of pending.
func loadDuplicateScope(ctx context.Context, regs repository.RegistrationRepository, pending []models.Registration) ([]models.Registration, error) {
	seen := make(map[string]struct{}, len(pending))
	utrs := make([]string, 0, len(pending))
	for _, reg := range pending {
		key := reg.PaymentProof.NormalizedUTR
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		seen[key] = struct{}{}
		utrs = append(utrs, key)
	}
	scope, err := regs.ListByNormalizedUTR(ctx, utrs)
	if err != nil {
		return nil, fmt.Errorf("load duplicate scope: %w", err)
	}
	return scope, nil
}
