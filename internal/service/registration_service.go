package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/registration-engine/internal/form"
	"github.com/Eursukkul/registration-engine/internal/metrics"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/repository"
	"github.com/Eursukkul/registration-engine/pkg/validator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SubmitRequest struct {
	EventID uint
	UserID  *string
	Email   string
	Name    string
	Answers models.Answers
}

type SubmitResult struct {
	State        FlowState
	Registration *models.Registration
	Created      bool
}

type RegistrationService interface {
	CheckIdentity(ctx context.Context, eventID uint, email string) (FlowState, error)
	ValidatePage(ctx context.Context, eventID uint, page int, answers models.Answers) (*form.FieldError, error)
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, *models.Event, error)
}

type registrationService struct {
	regs       repository.RegistrationRepository
	events     repository.EventRepository
	limits     PlanLimitsProvider
	dispatcher CompletionDispatcher
	opts       Options
	log        *zerolog.Logger
	now        func() time.Time
}

func NewRegistrationService(
	regs repository.RegistrationRepository,
	events repository.EventRepository,
	limits PlanLimitsProvider,
	dispatcher CompletionDispatcher,
	opts Options,
	logger *zerolog.Logger,
) RegistrationService {
	return &registrationService{
		regs:       regs,
		events:     events,
		limits:     limits,
		dispatcher: dispatcher,
		opts:       opts,
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *registrationService) CheckIdentity(ctx context.Context, eventID uint, email string) (FlowState, error) {
	event, err := s.openEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	email = models.NormalizeEmail(email)
	if email == "" {
		return CollectingIdentity{}, inputError("email", "Email is required")
	}
	if !validator.IsEmail(email) {
		return CollectingIdentity{}, inputError("email", "Enter a valid email address")
	}

	if !event.AllowMultipleRegistrations {
		existing, err := s.regs.FindActiveByEventAndEmail(ctx, eventID, email)
		if err == nil {
			return DuplicateBlocked{Existing: existing.Summary()}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	capacity, err := s.capacity(ctx, event)
	if err != nil {
		return nil, err
	}
	if capacity > 0 {
		count, err := s.regs.CountActiveByEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if count >= int64(capacity) {
			return nil, ErrCapacityExceeded
		}
	}
	return CollectingAnswers{}, nil
}

func (s *registrationService) ValidatePage(ctx context.Context, eventID uint, page int, answers models.Answers) (*form.FieldError, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ferr, err := form.ValidatePage(event.FormSchema, page, answers)
	if errors.Is(err, form.ErrPageOutOfRange) {
		return nil, inputError("page", fmt.Sprintf("Page %d does not exist", page))
	}
	return ferr, err
}

// Submit validates the whole form, not only the last page, and stores the
// registration under the capacity and identity guards.
func (s *registrationService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	event, err := s.openEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	email, name := resolveIdentity(event.FormSchema, req)
	if email == "" {
		return nil, inputError("email", "Email is required")
	}
	if !validator.IsEmail(email) {
		return nil, inputError("email", "Enter a valid email address")
	}

	if ferr := form.Validate(event.FormSchema, req.Answers); ferr != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, ferr
	}

	capacity, err := s.capacity(ctx, event)
	if err != nil {
		return nil, err
	}

	reg := &models.Registration{
		ID:        uuid.New(),
		EventID:   event.ID,
		UserID:    req.UserID,
		Email:     email,
		Name:      name,
		Answers:   req.Answers,
		PricePaid: event.Price,
		PaymentProof: models.PaymentProof{
			VerificationMethod: models.MethodNone,
		},
	}
	if event.IsFree() {
		reg.Status = models.StatusCompleted
		reg.PaymentProof.VerificationStatus = models.VerificationNotRequired
	} else {
		reg.Status = models.StatusPendingPayment
		reg.PaymentProof.VerificationStatus = models.VerificationPending
	}
	guard := repository.CreateGuard{Capacity: capacity, UniqueIdentity: !event.AllowMultipleRegistrations}
	if guard.UniqueIdentity {
		key := email
		reg.IdentityKey = &key
	}

	err = withRetry(ctx, s.log, "create_registration", s.opts.RetryBackoff, func() error {
		return s.regs.Create(ctx, reg, guard)
	})

	var dup *repository.DuplicateError
	switch {
	case err == nil:
	case errors.As(err, &dup):
		if dup.Existing != nil && dup.Existing.ID == reg.ID {
			// Our own insert committed before a retried attempt.
			break
		}
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		var summary models.Summary
		if dup.Existing != nil {
			summary = dup.Existing.Summary()
		}
		return &SubmitResult{State: DuplicateBlocked{Existing: summary}}, nil
	case errors.Is(err, repository.ErrCapacityReached):
		metrics.RegistrationsTotal.WithLabelValues("limit_reached").Inc()
		return nil, ErrCapacityExceeded
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrEventNotFound
	default:
		metrics.RegistrationsTotal.WithLabelValues("failed").Inc()
		s.log.Error().Err(err).Uint("event_id", event.ID).Msg("failed to store registration")
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	metrics.RegistrationsTotal.WithLabelValues(string(reg.Status)).Inc()
	s.log.Info().
		Str("registration_id", reg.ID.String()).
		Uint("event_id", event.ID).
		Str("status", string(reg.Status)).
		Msg("registration created")
	s.warnNearCapacity(ctx, event.ID, capacity)

	if reg.Status == models.StatusCompleted {
		s.dispatch(ctx, reg.ID)
		return &SubmitResult{State: Completed{Registration: reg}, Registration: reg, Created: true}, nil
	}
	return &SubmitResult{
		State:        AwaitingPayment{Registration: reg, Payment: event.PaymentConfig},
		Registration: reg,
		Created:      true,
	}, nil
}

func (s *registrationService) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, *models.Event, error) {
	reg, err := s.regs.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	event, err := s.events.FindByID(ctx, reg.EventID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}
	return reg, event, nil
}

func (s *registrationService) dispatch(ctx context.Context, id uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, id); err != nil {
		s.log.Error().Err(err).Str("registration_id", id.String()).Msg("failed to dispatch ticket issuance")
	}
}

func (s *registrationService) findEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	return event, err
}

func (s *registrationService) openEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.findEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.ClosedAt(s.now()) {
		return nil, ErrRegistrationClosed
	}
	return event, nil
}

// warnNearCapacity flags an event whose active registrations have reached
// 90% of its capacity.
func (s *registrationService) warnNearCapacity(ctx context.Context, eventID uint, capacity int) {
	if capacity <= 0 {
		return
	}
	count, err := s.regs.CountActiveByEvent(ctx, eventID)
	if err != nil {
		s.log.Warn().Err(err).Uint("event_id", eventID).Msg("failed to count registrations for capacity check")
		return
	}
	if count*10 < int64(capacity)*9 {
		return
	}
	metrics.CapacityAlertsTotal.Inc()
	s.log.Warn().
		Uint("event_id", eventID).
		Int64("registered", count).
		Int("capacity", capacity).
		Msg("event is nearly full")
}

func (s *registrationService) capacity(ctx context.Context, event *models.Event) (int, error) {
	var limits models.PlanLimits
	if s.limits != nil {
		l, err := s.limits.LimitsFor(ctx, event)
		if err != nil {
			return 0, fmt.Errorf("load plan limits: %w", err)
		}
		limits = l
	}
	return event.EffectiveCapacity(limits), nil
}

// resolveIdentity prefers the explicit email and name, falling back to the
// first email question and the first question whose label mentions a name.
func resolveIdentity(fields []models.FormField, req SubmitRequest) (email, name string) {
	email = models.NormalizeEmail(req.Email)
	name = strings.TrimSpace(req.Name)
	for _, f := range fields {
		if f.IsSection() {
			continue
		}
		v, ok := req.Answers[f.ID]
		if !ok || !v.IsText() {
			continue
		}
		if email == "" && f.Type == models.FieldEmail {
			email = models.NormalizeEmail(v.Text)
		}
		if name == "" && strings.Contains(strings.ToLower(f.Label), "name") {
			name = strings.TrimSpace(v.Text)
		}
	}
	return email, name
}
