package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"modesta-resort-api/common"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const RoutingKeyPasswordReset = "auth.password_reset"

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends domain events to a topic exchange. amqp channels are not
// safe for concurrent publishing, hence the mutex.
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
}

func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Connect dials the broker, opens a channel and declares a durable topic exchange.
func Connect(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Log.WithField("exchange", exchange).Info("Successfully connected to RabbitMQ")
	return conn, ch, nil
}

type passwordResetMessage struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	ResetURL  string `json:"reset_url"`
}

// NotifyPasswordReset publishes the reset link for the mailer to deliver.
func (p *Publisher) NotifyPasswordReset(ctx context.Context, user *model.User, resetURL string) error {
	return p.publish(ctx, RoutingKeyPasswordReset, passwordResetMessage{
		Type:      "password_reset",
		UserID:    user.UUID,
		Email:     user.Email,
		FirstName: user.FirstName,
		ResetURL:  resetURL,
	})
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	headers := amqp.Table{}
	if requestID := common.RequestIDFrom(ctx); requestID != "" {
		headers["X-Request-ID"] = requestID
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      headers,
		Body:         body,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("routing_key", routingKey).Error("Failed to publish message")
		return err
	}
	return nil
}
