package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/registration-engine/config"
	"github.com/Eursukkul/registration-engine/internal/app"
	"github.com/Eursukkul/registration-engine/internal/consumer"
	"github.com/Eursukkul/registration-engine/internal/fulfillment"
	"github.com/Eursukkul/registration-engine/internal/metrics"
	"github.com/Eursukkul/registration-engine/pkg/logger"
	"github.com/Eursukkul/registration-engine/pkg/rabbitmq"
	"github.com/rs/zerolog"
)

const (
	catalogQueue     = "registration-engine.events"
	fulfillmentQueue = "registration-engine.fulfillment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise application")
	}
	defer a.Close()

	// RabbitMQ consumer: sync events from the catalog service
	catalog, err := rabbitmq.NewConsumer(cfg.RabbitURL, rabbitmq.QueueSpec{
		Name: catalogQueue,
		Keys: consumer.EventKeys,
	}, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer catalog.Close()

	msgs, err := catalog.Consume()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start consuming catalog events")
	}
	consumer.NewEventConsumer(a.Events, &log).Start(ctx, msgs)

	if cfg.FulfillmentMode == config.FulfillmentQueue {
		completions, err := rabbitmq.NewConsumer(cfg.RabbitURL, rabbitmq.QueueSpec{
			Name:     fulfillmentQueue,
			Keys:     []string{fulfillment.RoutingKeyCompleted},
			Prefetch: 10,
		}, &log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect fulfillment consumer")
		}
		defer completions.Close()

		msgs, err := completions.Consume()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start consuming completions")
		}
		consumer.NewCompletionConsumer(a.Fulfiller, &log).Start(ctx, msgs)
	}

	go runSweeper(ctx, a, cfg, &log)

	e := a.NewServer(&log)

	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("store", cfg.StoreDriver).Str("fulfillment", cfg.FulfillmentMode).Msg("registration engine starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// runSweeper re-dispatches completed registrations whose ticket was never
// issued.
func runSweeper(ctx context.Context, a *app.App, cfg *config.Config, log *zerolog.Logger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Fulfiller.Sweep(ctx, a.Dispatcher, cfg.SweepMinAge, cfg.SweepLimit); err != nil {
				log.Error().Err(err).Msg("fulfillment sweep failed")
			}
		}
	}
}
