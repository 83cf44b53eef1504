package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	ExchangeName = "events"
	ExchangeKind = "topic"
)

// QueueSpec names a durable queue and the routing keys bound to it.
type QueueSpec struct {
	Name     string
	Keys     []string
	Prefetch int
}

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   QueueSpec
	log     *zerolog.Logger
}

func NewConsumer(url string, queue QueueSpec, logger *zerolog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	fail := func(step string, err error) (*Consumer, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq %s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		return fail("exchange declare", err)
	}

	q, err := ch.QueueDeclare(queue.Name, true, false, false, false, nil)
	if err != nil {
		return fail("queue declare", err)
	}

	for _, key := range queue.Keys {
		if err := ch.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			return fail("queue bind", err)
		}
	}

	if queue.Prefetch > 0 {
		if err := ch.Qos(queue.Prefetch, 0, false); err != nil {
			return fail("qos", err)
		}
	}

	return &Consumer{conn: conn, channel: ch, queue: queue, log: logger}, nil
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer tag
		false, // auto-ack = false, we ack manually after processing
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}

	c.log.Info().Str("queue", c.queue.Name).Strs("keys", c.queue.Keys).Msg("consuming from queue")
	return msgs, nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
