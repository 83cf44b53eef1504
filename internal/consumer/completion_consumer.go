package consumer

import (
	"context"
	"encoding/json"

	"github.com/Eursukkul/registration-engine/internal/fulfillment"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type Fulfiller interface {
	Fulfill(ctx context.Context, registrationID uuid.UUID) error
}

// CompletionConsumer runs fulfillment for registration.completed messages.
// A message that fails twice is dropped and left for the sweep.
type CompletionConsumer struct {
	fulfiller Fulfiller
	log       *zerolog.Logger
}

func NewCompletionConsumer(f Fulfiller, logger *zerolog.Logger) *CompletionConsumer {
	return &CompletionConsumer{fulfiller: f, log: logger}
}

func (cc *CompletionConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			cc.handleMessage(ctx, msg)
		}
		cc.log.Info().Msg("completion channel closed, stopping consumer")
	}()
}

func (cc *CompletionConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var m fulfillment.CompletedMessage
	if err := json.Unmarshal(msg.Body, &m); err != nil || m.RegistrationID == uuid.Nil {
		cc.log.Error().Err(err).Bytes("body", msg.Body).Msg("invalid completion message")
		msg.Nack(false, false)
		return
	}

	if err := cc.fulfiller.Fulfill(ctx, m.RegistrationID); err != nil {
		requeue := !msg.Redelivered
		cc.log.Error().Err(err).
			Str("registration_id", m.RegistrationID.String()).
			Bool("requeue", requeue).
			Msg("fulfillment failed")
		msg.Nack(false, requeue)
		return
	}
	msg.Ack(false)
}
