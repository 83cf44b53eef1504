// Package fulfillment runs the completion side effect: one ticket per
// completed registration plus an optional confirmation email.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/registration-engine/internal/mailer"
	"github.com/Eursukkul/registration-engine/internal/metrics"
	"github.com/Eursukkul/registration-engine/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type TicketIssuer interface {
	IssueTicket(ctx context.Context, registrationID uuid.UUID) (string, error)
}

type Notifier interface {
	SendConfirmation(ctx context.Context, c mailer.Confirmation) error
}

// Dispatcher requests fulfillment of a completed registration.
type Dispatcher interface {
	Dispatch(ctx context.Context, registrationID uuid.UUID) error
}

type Fulfiller struct {
	regs     repository.RegistrationRepository
	events   repository.EventRepository
	issuer   TicketIssuer
	notifier Notifier
	claimTTL time.Duration
	log      *zerolog.Logger
	now      func() time.Time
}

// NewFulfiller builds a Fulfiller. notifier may be nil. A claim older than
// claimTTL is treated as abandoned by a crashed worker.
func NewFulfiller(
	regs repository.RegistrationRepository,
	events repository.EventRepository,
	issuer TicketIssuer,
	notifier Notifier,
	claimTTL time.Duration,
	logger *zerolog.Logger,
) *Fulfiller {
	return &Fulfiller{
		regs:     regs,
		events:   events,
		issuer:   issuer,
		notifier: notifier,
		claimTTL: claimTTL,
		log:      logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch fulfills inline.
func (f *Fulfiller) Dispatch(ctx context.Context, registrationID uuid.UUID) error {
	return f.Fulfill(ctx, registrationID)
}

// Fulfill issues the ticket at most once. Concurrent or repeated calls for
// the same registration lose the claim and return nil.
func (f *Fulfiller) Fulfill(ctx context.Context, registrationID uuid.UUID) error {
	logger := f.log.With().Str("registration_id", registrationID.String()).Logger()

	claimed, err := f.regs.ClaimFulfillment(ctx, registrationID, f.claimTTL)
	if err != nil {
		return fmt.Errorf("claim fulfillment: %w", err)
	}
	if !claimed {
		metrics.FulfillmentsTotal.WithLabelValues("skipped").Inc()
		logger.Debug().Msg("ticket already issued or being issued")
		return nil
	}

	code, err := f.issuer.IssueTicket(ctx, registrationID)
	if err != nil {
		f.release(ctx, registrationID, &logger)
		metrics.FulfillmentsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("issue ticket: %w", err)
	}

	if err := f.regs.MarkTicketIssued(ctx, registrationID, code, f.now()); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil
		}
		f.release(ctx, registrationID, &logger)
		metrics.FulfillmentsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("mark ticket issued: %w", err)
	}

	metrics.FulfillmentsTotal.WithLabelValues("issued").Inc()
	logger.Info().Str("ticket_code", code).Msg("ticket issued")

	f.notify(ctx, registrationID, code, &logger)
	return nil
}

// Sweep re-dispatches completed registrations that still have no ticket after
// olderThan, such as those whose queue message was lost.
func (f *Fulfiller) Sweep(ctx context.Context, d Dispatcher, olderThan time.Duration, limit int) (int, error) {
	stuck, err := f.regs.ListUnfulfilled(ctx, f.now().Add(-olderThan), limit)
	if err != nil {
		return 0, fmt.Errorf("list unfulfilled: %w", err)
	}

	dispatched := 0
	for _, reg := range stuck {
		if ctx.Err() != nil {
			break
		}
		if err := d.Dispatch(ctx, reg.ID); err != nil {
			f.log.Warn().Err(err).Str("registration_id", reg.ID.String()).Msg("sweep dispatch failed")
			continue
		}
		dispatched++
	}
	if dispatched > 0 {
		f.log.Info().Int("dispatched", dispatched).Msg("fulfillment sweep")
	}
	return dispatched, nil
}

func (f *Fulfiller) release(ctx context.Context, id uuid.UUID, logger *zerolog.Logger) {
	if err := f.regs.ReleaseFulfillment(context.WithoutCancel(ctx), id); err != nil {
		logger.Error().Err(err).Msg("failed to release fulfillment claim")
	}
}

// notify is best effort; a failed email never undoes the ticket.
func (f *Fulfiller) notify(ctx context.Context, id uuid.UUID, code string, logger *zerolog.Logger) {
	if f.notifier == nil {
		return
	}
	reg, err := f.regs.FindByID(ctx, id)
	if err != nil {
		logger.Warn().Err(err).Msg("skip confirmation email: registration lookup failed")
		return
	}
	event, err := f.events.FindByID(ctx, reg.EventID)
	if err != nil {
		logger.Warn().Err(err).Msg("skip confirmation email: event lookup failed")
		return
	}
	if !event.SendConfirmationEmail {
		return
	}

	err = f.notifier.SendConfirmation(ctx, mailer.Confirmation{
		RegistrationID: id,
		EventName:      event.Name,
		Email:          reg.Email,
		Name:           reg.Name,
		TicketCode:     code,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("confirmation email failed")
	}
}
