package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/auth-backend/internal/queue"
)

// AMQPPublisher publishes AuthEvents to the durable auth.events queue. It
// dials per publish, so a broker restart never leaves it holding a dead
// connection.
type AMQPPublisher struct {
	url         string
	dialTimeout time.Duration
}

// NewAMQPPublisher returns nil when url is empty, which disables events.
func NewAMQPPublisher(url string) *AMQPPublisher {
	if url == "" {
		return nil
	}
	return &AMQPPublisher{url: url, dialTimeout: 2 * time.Second}
}

// Publish sends ev as a persistent JSON message. Any error is returned so
// the caller can log it; nothing here panics.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.AuthEvent) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.AuthEventsQueue, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                    // default exchange
		queue.AuthEventsQueue, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		pub,
	); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
