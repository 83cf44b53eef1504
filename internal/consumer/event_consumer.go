package consumer

import (
	"context"
	"encoding/json"

	"github.com/Eursukkul/registration-engine/internal/form"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Routing keys the catalog publishes on.
var EventKeys = []string{"event.created", "event.updated"}

type EventConsumer struct {
	events repository.EventRepository
	log    *zerolog.Logger
}

func NewEventConsumer(events repository.EventRepository, logger *zerolog.Logger) *EventConsumer {
	return &EventConsumer{events: events, log: logger}
}

// Start listens for catalog messages and upserts events into the local replica.
func (ec *EventConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			ec.handleMessage(ctx, msg)
		}
		ec.log.Info().Msg("event channel closed, stopping consumer")
	}()
}

func (ec *EventConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var event models.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		ec.log.Error().Err(err).Str("routing_key", msg.RoutingKey).Msg("failed to unmarshal event")
		msg.Nack(false, false)
		return
	}
	if event.ID == 0 {
		ec.log.Error().Str("routing_key", msg.RoutingKey).Msg("event message without id")
		msg.Nack(false, false)
		return
	}
	if event.Status == "" {
		event.Status = models.EventActive
	}

	if err := form.CheckSchema(event.FormSchema); err != nil {
		ec.log.Warn().Err(err).Uint("event_id", event.ID).Msg("event form schema has ambiguous fields")
	}

	if err := ec.events.Upsert(ctx, &event); err != nil {
		ec.log.Error().Err(err).Uint("event_id", event.ID).Msg("failed to upsert event")
		msg.Nack(false, true) // requeue
		return
	}

	ec.log.Info().Uint("event_id", event.ID).Str("name", event.Name).Msg("synced event")
	msg.Ack(false)
}
