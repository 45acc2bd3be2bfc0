// Package queue publishes identity events to RabbitMQ. The mailer that turns
// a PasswordResetEvent into an email lives outside this service; all we own
// is getting the event onto a durable queue.
package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const passwordResetQueue = "auth.password_reset"

type PasswordResetEvent struct {
	EventID     string    `json:"event_id"`
	Email       string    `json:"email"`
	ResetToken  string    `json:"reset_token"`
	RequestedAt time.Time `json:"requested_at"`
}

type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// PublishPasswordReset puts the event on the auth.password_reset queue.
// Errors are logged and returned; the caller decides whether they matter.
func (p *Publisher) PublishPasswordReset(ctx context.Context, event PasswordResetEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("[Queue] dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("[Queue] channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so events survive a broker restart; declare is idempotent.
	if _, err := ch.QueueDeclare(passwordResetQueue, true, false, false, false, nil); err != nil {
		log.Printf("[Queue] queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Queue] marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", passwordResetQueue, false, false, pub); err != nil {
		log.Printf("[Queue] publish failed: %v", err)
		return err
	}

	return nil
}
