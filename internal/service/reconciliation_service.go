package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Eursukkul/registration-engine/internal/metrics"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/reconcile"
	"github.com/Eursukkul/registration-engine/internal/repository"
	"github.com/Eursukkul/registration-engine/internal/statement"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ReconcileRequest struct {
	StatementText string
	// EventID limits matching to one event. Duplicate detection stays
	// platform wide either way.
	EventID *uint
	// ConfirmDuplicates lets Apply verify matches whose UTR is shared with
	// another registration.
	ConfirmDuplicates bool
	Operator          string
}

type ReconcileResult struct {
	Stats  statement.Stats  `json:"stats"`
	Report reconcile.Report `json:"report"`
	Held   []uuid.UUID      `json:"held,omitempty"`
	// ManualOnly lists clean matches left pending because their event has
	// auto verification switched off.
	ManualOnly []uuid.UUID   `json:"manual_only,omitempty"`
	Applied    *BatchSummary `json:"applied,omitempty"`
}

type ReconciliationService interface {
	// Preview parses and matches without changing any registration.
	Preview(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error)
	// Apply previews, then verifies every clean match whose event allows
	// auto verification.
	Apply(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error)
}

type reconciliationService struct {
	regs     repository.RegistrationRepository
	events   repository.EventRepository
	verifier VerificationService
	opts     Options
	log      *zerolog.Logger
}

func NewReconciliationService(regs repository.RegistrationRepository, events repository.EventRepository, verifier VerificationService, opts Options, logger *zerolog.Logger) ReconciliationService {
	return &reconciliationService{
		regs:     regs,
		events:   events,
		verifier: verifier,
		opts:     opts,
		log:      logger,
	}
}

func (s *reconciliationService) Preview(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error) {
	start := time.Now()
	defer func() { metrics.ReconcileDuration.Observe(time.Since(start).Seconds()) }()

	if strings.TrimSpace(req.StatementText) == "" {
		return nil, inputError("statementText", "Statement text is required")
	}

	parsed := statement.Parse(req.StatementText, s.opts.Parser)
	metrics.StatementLinesTotal.WithLabelValues("extracted").Add(float64(parsed.Stats.Extracted))
	metrics.StatementLinesTotal.WithLabelValues("skipped").Add(float64(parsed.Stats.Skipped))
	metrics.StatementLinesTotal.WithLabelValues("unparsed").Add(float64(parsed.Stats.Unparsed))

	pending, err := s.regs.ListPendingPaymentsWithUTR(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	scope, err := loadDuplicateScope(ctx, s.regs, pending)
	if err != nil {
		return nil, err
	}

	report := reconcile.Match(parsed.Transactions, pending, scope, reconcile.Options{Tolerance: s.opts.AmountTolerance})
	metrics.ReconcileOutcomesTotal.WithLabelValues(string(reconcile.OutcomeVerified)).Add(float64(report.Verified))
	metrics.ReconcileOutcomesTotal.WithLabelValues(string(reconcile.OutcomeAmbiguousAmount)).Add(float64(report.Ambiguous))
	metrics.ReconcileOutcomesTotal.WithLabelValues(string(reconcile.OutcomeNoMatch)).Add(float64(report.Unmatched))

	s.log.Info().
		Int("lines", parsed.Stats.TotalLines).
		Int("transactions", parsed.Stats.Extracted).
		Int("pending", len(pending)).
		Int("verified", report.Verified).
		Int("ambiguous", report.Ambiguous).
		Int("unmatched", report.Unmatched).
		Msg("statement reconciled")

	return &ReconcileResult{Stats: parsed.Stats, Report: report}, nil
}

func (s *reconciliationService) Apply(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error) {
	res, err := s.Preview(ctx, req)
	if err != nil {
		return nil, err
	}

	autoVerify := map[uint]bool{}
	var decisions []Decision
	for _, d := range res.Report.Details {
		if d.Outcome != reconcile.OutcomeVerified {
			continue
		}
		allowed, seen := autoVerify[d.EventID]
		if !seen {
			allowed, err = s.autoVerifyEnabled(ctx, d.EventID)
			if err != nil {
				return nil, err
			}
			autoVerify[d.EventID] = allowed
		}
		if !allowed {
			res.ManualOnly = append(res.ManualOnly, d.RegistrationID)
			continue
		}
		if d.IsDuplicateUTR && !req.ConfirmDuplicates {
			res.Held = append(res.Held, d.RegistrationID)
			continue
		}
		decisions = append(decisions, Decision{
			RegistrationID: d.RegistrationID,
			Outcome:        models.VerificationVerified,
			Method:         models.MethodStatementMatch,
			VerifiedBy:     req.Operator,
		})
	}

	summary := s.verifier.ApplyBatch(ctx, decisions)
	res.Applied = &summary
	return res, nil
}

func (s *reconciliationService) autoVerifyEnabled(ctx context.Context, eventID uint) (bool, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn().Uint("event_id", eventID).Msg("matched registration belongs to an unknown event")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return event.PaymentConfig.AutoVerifyEnabled, nil
}
