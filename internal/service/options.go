package service

import (
	"context"
	"time"

	"github.com/Eursukkul/registration-engine/internal/metrics"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/reconcile"
	"github.com/Eursukkul/registration-engine/internal/repository"
	"github.com/Eursukkul/registration-engine/internal/statement"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Options struct {
	RetryBackoff     time.Duration
	AmountTolerance  decimal.Decimal
	StaleProofAge    time.Duration
	BatchConcurrency int
	Parser           statement.Options
}

func DefaultOptions() Options {
	return Options{
		RetryBackoff:     200 * time.Millisecond,
		AmountTolerance:  reconcile.DefaultOptions().Tolerance,
		StaleProofAge:    30 * 24 * time.Hour,
		BatchConcurrency: 5,
		Parser:           statement.DefaultOptions(),
	}
}

// PlanLimitsProvider supplies the host plan snapshot for one operation.
type PlanLimitsProvider interface {
	LimitsFor(ctx context.Context, event *models.Event) (models.PlanLimits, error)
}

// StaticPlanLimits applies the same limits to every event.
type StaticPlanLimits models.PlanLimits

func (l StaticPlanLimits) LimitsFor(context.Context, *models.Event) (models.PlanLimits, error) {
	return models.PlanLimits(l), nil
}

// CompletionDispatcher triggers ticket issuance and the confirmation email
// for a registration that reached completed. It must be idempotent.
type CompletionDispatcher interface {
	Dispatch(ctx context.Context, registrationID uuid.UUID) error
}

// withRetry runs fn and repeats it once after backoff when the store reports
// a transient error.
func withRetry(ctx context.Context, log *zerolog.Logger, op string, backoff time.Duration, fn func() error) error {
	err := fn()
	if err == nil || !repository.IsTransient(err) {
		return err
	}
	metrics.StoreRetriesTotal.WithLabelValues(op).Inc()
	log.Warn().Err(err).Str("op", op).Msg("transient store error, retrying")

	t := time.NewTimer(backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return err
	case <-t.C:
	}
	return fn()
}
