package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/registration-engine/internal/metrics"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ReasonDuplicateUTR as a rejection reason marks the registration
// duplicate_rejected instead of rejected.
const ReasonDuplicateUTR = "duplicate_utr"

type Decision struct {
	RegistrationID uuid.UUID
	Outcome        models.VerificationStatus
	Method         models.VerificationMethod
	Reason         string
	VerifiedBy     string
}

type ReviewResult struct {
	Registration *models.Registration `json:"registration"`
	Warnings     []string             `json:"warnings,omitempty"`
}

type ItemStatus string

const (
	ItemApplied      ItemStatus = "applied"
	ItemInvalidState ItemStatus = "invalid_state"
	ItemNotFound     ItemStatus = "not_found"
	ItemFailed       ItemStatus = "failed"
	ItemSkipped      ItemStatus = "skipped"
)

type ItemResult struct {
	RegistrationID uuid.UUID                 `json:"registration_id"`
	Outcome        models.VerificationStatus `json:"outcome"`
	Status         ItemStatus                `json:"status"`
	Error          string                    `json:"error,omitempty"`
}

type BatchSummary struct {
	Applied      int          `json:"applied"`
	InvalidState int          `json:"invalid_state"`
	NotFound     int          `json:"not_found"`
	Failed       int          `json:"failed"`
	Skipped      int          `json:"skipped"`
	Items        []ItemResult `json:"items"`
}

type VerificationService interface {
	Transition(ctx context.Context, d Decision) (*models.Registration, error)
	ManualReview(ctx context.Context, d Decision, force bool) (*ReviewResult, error)
	ApplyBatch(ctx context.Context, decisions []Decision) BatchSummary
}

type verificationService struct {
	regs       repository.RegistrationRepository
	dispatcher CompletionDispatcher
	opts       Options
	log        *zerolog.Logger
	now        func() time.Time
}

func NewVerificationService(regs repository.RegistrationRepository, dispatcher CompletionDispatcher, opts Options, logger *zerolog.Logger) VerificationService {
	return &verificationService{
		regs:       regs,
		dispatcher: dispatcher,
		opts:       opts,
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Transition moves a proof out of pending with a single compare-and-swap.
// A caller that loses a race gets ErrInvalidState. Verifying needs a
// submitted UTR whichever path the decision came from.
func (s *verificationService) Transition(ctx context.Context, d Decision) (*models.Registration, error) {
	upd := VerificationUpdateFor(d, s.now())
	if upd == nil {
		return nil, inputError("outcome", "Outcome must be verified or rejected")
	}
	if d.Method != models.MethodManual && d.Method != models.MethodStatementMatch {
		return nil, inputError("method", "Method must be manual or statement_match")
	}
	if d.Outcome == models.VerificationVerified {
		current, err := s.regs.FindByID(ctx, d.RegistrationID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
		}
		if err := requireUTR(current); err != nil {
			return nil, err
		}
	}

	var reg *models.Registration
	err := withRetry(ctx, s.log, "verify", s.opts.RetryBackoff, func() error {
		var err error
		reg, err = s.regs.CASVerificationStatus(ctx, d.RegistrationID, models.VerificationPending, *upd)
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrStateConflict):
		return nil, ErrInvalidState
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrRegistrationNotFound
	default:
		s.log.Error().Err(err).Str("registration_id", d.RegistrationID.String()).Msg("failed to store verification")
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	metrics.VerificationsTotal.WithLabelValues(string(d.Outcome), string(d.Method)).Inc()
	s.log.Info().
		Str("registration_id", reg.ID.String()).
		Str("outcome", string(d.Outcome)).
		Str("method", string(d.Method)).
		Str("status", string(reg.Status)).
		Msg("payment verification applied")

	if reg.Status == models.StatusCompleted && s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(ctx, reg.ID); err != nil {
			s.log.Error().Err(err).Str("registration_id", reg.ID.String()).Msg("failed to dispatch ticket issuance")
		}
	}
	return reg, nil
}

// VerificationUpdateFor builds the store update for a decision, or nil when
// the outcome is not a terminal verification state.
func VerificationUpdateFor(d Decision, at time.Time) *repository.VerificationUpdate {
	upd := &repository.VerificationUpdate{
		Status:     d.Outcome,
		Method:     d.Method,
		VerifiedBy: d.VerifiedBy,
		At:         at,
	}
	switch d.Outcome {
	case models.VerificationVerified:
		upd.RegistrationStatus = models.StatusCompleted
	case models.VerificationRejected:
		upd.RegistrationStatus = models.StatusRejected
		upd.RejectionReason = d.Reason
		if d.Reason == ReasonDuplicateUTR {
			upd.RegistrationStatus = models.StatusDuplicateRejected
		}
	default:
		return nil
	}
	return upd
}

// ManualReview runs the checks an operator sees before approving by hand.
// An amount mismatch blocks approval unless force is set.
func (s *verificationService) ManualReview(ctx context.Context, d Decision, force bool) (*ReviewResult, error) {
	reg, err := s.regs.FindByID(ctx, d.RegistrationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}
	if reg.PaymentProof.VerificationStatus != models.VerificationPending {
		return nil, ErrInvalidState
	}

	var warnings []string
	if d.Outcome == models.VerificationVerified {
		if err := requireUTR(reg); err != nil {
			return nil, err
		}
		proof := reg.PaymentProof
		gap := proof.Amount.Sub(reg.PricePaid).Abs()
		if reg.PricePaid.IsPositive() && gap.GreaterThan(s.opts.AmountTolerance) {
			if !force {
				return nil, fmt.Errorf("%w: claimed %s, expected %s", ErrAmountMismatch,
					proof.Amount.StringFixed(2), reg.PricePaid.StringFixed(2))
			}
			warnings = append(warnings, "approved despite amount mismatch")
		}
		if proof.UploadedAt != nil && s.now().Sub(*proof.UploadedAt) > s.opts.StaleProofAge {
			warnings = append(warnings, fmt.Sprintf("payment proof is older than %d days", int(s.opts.StaleProofAge.Hours()/24)))
			s.log.Warn().Str("registration_id", reg.ID.String()).Time("uploaded_at", *proof.UploadedAt).Msg("approving an old payment proof")
		}
	}

	d.Method = models.MethodManual
	updated, err := s.Transition(ctx, d)
	if err != nil {
		return nil, err
	}
	return &ReviewResult{Registration: updated, Warnings: warnings}, nil
}

func requireUTR(reg *models.Registration) error {
	if reg.PaymentProof.UTR == "" {
		return inputError("utr", "No UTR has been submitted for this registration")
	}
	return nil
}

// ApplyBatch applies each decision on its own. Failures are collected, never
// fatal, and decisions not started before ctx is cancelled are skipped.
func (s *verificationService) ApplyBatch(ctx context.Context, decisions []Decision) BatchSummary {
	items := make([]ItemResult, len(decisions))

	limit := s.opts.BatchConcurrency
	if limit <= 0 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for i, d := range decisions {
		items[i] = ItemResult{RegistrationID: d.RegistrationID, Outcome: d.Outcome, Status: ItemSkipped}
		if ctx.Err() != nil {
			continue
		}
		i, d := i, d
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			_, err := s.Transition(ctx, d)
			items[i].Status = itemStatus(err)
			if err != nil {
				items[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := BatchSummary{Items: items}
	for _, it := range items {
		switch it.Status {
		case ItemApplied:
			summary.Applied++
		case ItemInvalidState:
			summary.InvalidState++
		case ItemNotFound:
			summary.NotFound++
		case ItemFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}
	return summary
}

func itemStatus(err error) ItemStatus {
	switch {
	case err == nil:
		return ItemApplied
	case errors.Is(err, ErrInvalidState):
		return ItemInvalidState
	case errors.Is(err, ErrRegistrationNotFound):
		return ItemNotFound
	default:
		return ItemFailed
	}
}
