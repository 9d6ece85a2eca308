package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/config"
)

// Publisher delivers domain events to the broker.
type Publisher interface {
	PublishNotificationCreated(ctx context.Context, ev NotificationCreatedEvent) error
}

// NopPublisher drops every event.  It is used when the queue is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishNotificationCreated(context.Context, NotificationCreatedEvent) error {
	return nil
}

// AMQPPublisher publishes to a durable RabbitMQ queue.  Each publish dials
// its own short-lived connection, so a broker outage never leaves a broken
// connection behind; errors are logged and returned and callers may ignore
// them.
type AMQPPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	log         logrus.FieldLogger
	dial        func(url string, timeout time.Duration) (*amqp.Connection, error)
}

func NewAMQPPublisher(cfg config.QueueConfig, log logrus.FieldLogger) *AMQPPublisher {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &AMQPPublisher{url: cfg.URL, queue: cfg.Queue, dialTimeout: timeout, log: log, dial: dialBounded}
}

// dialBounded connects with a bounded TCP connect and AMQP handshake.
// amqp.Dial uses a fixed 30s connect timeout.
func dialBounded(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// dialBudget is the configured timeout cut down to what is left of ctx.
func (p *AMQPPublisher) dialBudget(ctx context.Context) (time.Duration, error) {
	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return timeout, nil
}

// NewPublisher returns an AMQPPublisher when the queue is enabled and a
// NopPublisher otherwise.
func NewPublisher(cfg config.QueueConfig, log logrus.FieldLogger) Publisher {
	if !cfg.Enabled {
		return NopPublisher{}
	}
	return NewAMQPPublisher(cfg, log)
}

// PublishNotificationCreated sends ev as a persistent JSON message routed
// through the default exchange to the configured queue.
func (p *AMQPPublisher) PublishNotificationCreated(ctx context.Context, ev NotificationCreatedEvent) error {
	log := p.log.WithField("queue", p.queue)

	body, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Error("rabbitmq: marshal event failed")
		return err
	}

	timeout, err := p.dialBudget(ctx)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: no time left to dial")
		return err
	}
	conn, err := p.dial(p.url, timeout)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, p.queue); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.NotificationID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

// declare makes sure the durable queue exists.  Declaring is idempotent.
func declare(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}
