package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/config"
)

// StartNotificationConsumer connects to RabbitMQ, declares the notification
// queue and hands every delivery to the recipient's inbox log.  It
// reconnects with exponential backoff and only returns once ctx is done.
// Malformed messages are rejected without requeue so they cannot loop.
func StartNotificationConsumer(ctx context.Context, cfg config.QueueConfig, log logrus.FieldLogger) error {
	log = log.WithField("component", "notification-consumer")

	backoff := time.Second
	for {
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, cfg.Queue, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, log logrus.FieldLogger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("set QoS failed")
	}
	if err := declare(ch, queue); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(d.Body, log); err != nil {
				log.WithError(err).Warn("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handleMessage decodes one event and records the delivery.  The log line
// stands in for a push or e-mail channel.
func handleMessage(body []byte, log logrus.FieldLogger) error {
	var ev NotificationCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.NotificationID == "" || ev.RecipientID == "" {
		return errors.New("event without notification or recipient id")
	}
	log.WithFields(logrus.Fields{
		"notification_id": ev.NotificationID,
		"recipient_id":    ev.RecipientID,
		"actor_id":        ev.ActorID,
		"post_id":         ev.PostID,
		"comment_id":      ev.CommentID,
		"created_at":      ev.CreatedAt,
	}).Info(ev.Message)
	return nil
}
