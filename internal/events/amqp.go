package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp.Channel used by the publisher.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher forwards dispatched events to a topic exchange, routed by event type.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   *zap.Logger
}

// DialAMQP connects to the broker and declares the exchange.
func DialAMQP(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	publisher := NewAMQPPublisher(ch, exchange, logger)
	publisher.conn = conn
	return publisher, nil
}

// NewAMQPPublisher wraps an already open channel.
func NewAMQPPublisher(ch Channel, exchange string, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{channel: ch, exchange: exchange, logger: logger}
}

// Register subscribes the publisher to every event type.
func (p *AMQPPublisher) Register(dispatcher Dispatcher) {
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, p.Handle)
	}
}

// Handle publishes one event as a persistent JSON message.
func (p *AMQPPublisher) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.Timestamp,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	p.logger.Debug("event published", zap.String("event_type", string(event.Type)), zap.String("job_id", event.JobID))
	return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
