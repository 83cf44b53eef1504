// Package app assembles the store, services and fulfillment pipeline from
// configuration. The HTTP server and the reconcile command share it.
package app

import (
	"fmt"

	"github.com/Eursukkul/registration-engine/config"
	"github.com/Eursukkul/registration-engine/internal/fulfillment"
	"github.com/Eursukkul/registration-engine/internal/mailer"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/repository"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/Eursukkul/registration-engine/internal/statement"
	"github.com/Eursukkul/registration-engine/internal/ticketing"
	"github.com/Eursukkul/registration-engine/pkg/database"
	"github.com/Eursukkul/registration-engine/pkg/rabbitmq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type App struct {
	Events        repository.EventRepository
	Registrations repository.RegistrationRepository

	Fulfiller  *fulfillment.Fulfiller
	Dispatcher fulfillment.Dispatcher

	Registration   service.RegistrationService
	Payment        service.PaymentService
	Verification   service.VerificationService
	Reconciliation service.ReconciliationService

	db        *gorm.DB
	publisher *rabbitmq.Publisher
}

func New(cfg *config.Config, log *zerolog.Logger) (*App, error) {
	a := &App{}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := repository.NewMemoryStore()
		a.Events, a.Registrations = store.Events(), store.Registrations()
		log.Warn().Msg("using in-memory store, data is lost on restart")
	default:
		db, err := database.NewPostgresDB(cfg.DSN(), log)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.Events = repository.NewEventRepository(db)
		a.Registrations = repository.NewRegistrationRepository(db)
	}

	issuer, err := ticketing.NewCodeIssuer(cfg.TicketSecret)
	if err != nil {
		a.Close()
		return nil, err
	}
	var notifier fulfillment.Notifier
	if cfg.SMTPHost != "" {
		notifier = mailer.NewSMTPNotifier(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log)
	} else {
		log.Warn().Msg("SMTP_HOST not set, confirmation emails are disabled")
	}
	a.Fulfiller = fulfillment.NewFulfiller(a.Registrations, a.Events, issuer, notifier, cfg.ClaimTTL, log)

	switch cfg.FulfillmentMode {
	case config.FulfillmentInline:
		a.Dispatcher = a.Fulfiller
	default:
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect publisher: %w", err)
		}
		a.publisher = pub
		a.Dispatcher = fulfillment.NewQueueDispatcher(pub)
	}

	opts := ServiceOptions(cfg)
	limits := service.StaticPlanLimits(models.PlanLimits{MaxAttendeesPerEvent: cfg.PlanMaxAttendees})
	a.Registration = service.NewRegistrationService(a.Registrations, a.Events, limits, a.Dispatcher, opts, log)
	a.Payment = service.NewPaymentService(a.Registrations, a.Events, opts, log)
	a.Verification = service.NewVerificationService(a.Registrations, a.Dispatcher, opts, log)
	a.Reconciliation = service.NewReconciliationService(a.Registrations, a.Events, a.Verification, opts, log)
	return a, nil
}

func ServiceOptions(cfg *config.Config) service.Options {
	return service.Options{
		RetryBackoff:     cfg.RetryBackoff,
		AmountTolerance:  cfg.AmountTolerance,
		StaleProofAge:    cfg.StaleProofAge,
		BatchConcurrency: cfg.BatchConcurrency,
		Parser: statement.Options{
			MinTokens:          cfg.ParserMinTokens,
			MinReferenceLength: cfg.ParserMinRefLength,
		},
	}
}

func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
