package fulfillment

import (
	"context"

	"github.com/google/uuid"
)

const RoutingKeyCompleted = "registration.completed"

// CompletedMessage is published when a registration reaches completed.
type CompletedMessage struct {
	RegistrationID uuid.UUID `json:"registration_id"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// QueueDispatcher hands fulfillment to the completion consumer through the
// message broker.
type QueueDispatcher struct {
	pub Publisher
}

func NewQueueDispatcher(pub Publisher) *QueueDispatcher {
	return &QueueDispatcher{pub: pub}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, registrationID uuid.UUID) error {
	return d.pub.Publish(ctx, RoutingKeyCompleted, CompletedMessage{RegistrationID: registrationID})
}
