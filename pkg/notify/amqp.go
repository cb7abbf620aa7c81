package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"digital.vasic.defecthunt/pkg/logging"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPOption configures an AMQPPublisher.
type AMQPOption func(*AMQPPublisher)

// WithAMQPLogger logs publish failures on l.
func WithAMQPLogger(l logging.Logger) AMQPOption {
	return func(p *AMQPPublisher) { p.log = logging.OrNull(l) }
}

// WithAMQPTimeout bounds each publish.
func WithAMQPTimeout(d time.Duration) AMQPOption {
	return func(p *AMQPPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// AMQPPublisher is a Sink that puts events as persistent JSON
// messages on a durable RabbitMQ queue, for consumers that must
// not miss an award while they are offline.
type AMQPPublisher struct {
	queue   string
	timeout time.Duration
	log     logging.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher dials url and declares queue. An empty queue
// selects DefaultChannel.
func NewAMQPPublisher(url, queue string, opts ...AMQPOption) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultChannel
	}
	p := &AMQPPublisher{
		queue:   queue,
		timeout: 2 * time.Second,
		log:     logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", queue, err)
	}

	p.conn = conn
	p.channel = ch
	return p, nil
}

// Queue returns the queue name.
func (p *AMQPPublisher) Queue() string { return p.queue }

// Notify publishes event. Failures are logged, never returned.
func (p *AMQPPublisher) Notify(event Event) {
	if err := p.Publish(context.Background(), event); err != nil {
		p.log.Error("publish event",
			logging.StringField("event_id", event.ID),
			logging.StringField("queue", p.queue),
			logging.ErrorField(err),
		)
	}
}

// Publish publishes event and reports the outcome.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return fmt.Errorf("amqp publisher closed")
	}
	return p.channel.PublishWithContext(
		ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Type:         string(event.Kind),
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return nil
	}
	_ = p.channel.Close()
	p.channel = nil
	return p.conn.Close()
}
