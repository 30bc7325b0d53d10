package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer drains the domain event queues into an activity log. It keeps
// reconnecting with backoff until its context is cancelled.
type Consumer struct {
	url      string
	log      *zap.Logger
	activity *zap.Logger
}

// NewConsumer builds a consumer; log reports broker problems and activity
// receives one entry per event.
func NewConsumer(url string, log, activity *zap.Logger) *Consumer {
	return &Consumer{url: url, log: log.With(zap.String("component", "event-consumer")), activity: activity}
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
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

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set QoS failed", zap.Error(err))
	}

	queues := []string{PackageActivatedQueue, BookingStatusChangedQueue}
	deliveries := make([]<-chan amqp.Delivery, 0, len(queues))
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		deliveries = append(deliveries, msgs)
	}

	activated, changed := deliveries[0], deliveries[1]
	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-activated:
		case d, ok = <-changed:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.Handle(d.RoutingKey, d.Body); err != nil {
			c.log.Warn("handle message failed", zap.String("queue", d.RoutingKey), zap.Error(err))
			_ = d.Nack(false, false) // no requeue: a bad payload would loop forever
			continue
		}
		_ = d.Ack(false)
	}
}

// Handle decodes one message from the named queue and records it.
func (c *Consumer) Handle(queueName string, body []byte) error {
	switch queueName {
	case PackageActivatedQueue:
		var ev PackageActivatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		fields := []zap.Field{
			zap.Uint64("package_id", ev.PackageID),
			zap.Uint64("customer_id", ev.CustomerID),
			zap.Uint64("pricing_tier_id", ev.PricingTierID),
			zap.Uint64("payment_id", ev.PaymentID),
			zap.String("method", ev.Method),
			zap.String("amount", ev.Amount),
			zap.String("status", ev.Status),
			zap.String("activated_at", ev.ActivatedAt),
			zap.String("occurred_at", ev.OccurredAt),
		}
		if ev.ExpiresAt != nil {
			fields = append(fields, zap.String("expires_at", *ev.ExpiresAt))
		}
		c.activity.Info("package activated", fields...)
	case BookingStatusChangedQueue:
		var ev BookingStatusChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		fields := []zap.Field{
			zap.Uint64("booking_id", ev.BookingID),
			zap.Uint64("customer_id", ev.CustomerID),
			zap.String("from", ev.From),
			zap.String("to", ev.To),
			zap.Uint64("actor_id", ev.ActorID),
			zap.String("actor_role", ev.ActorRole),
			zap.String("occurred_at", ev.OccurredAt),
		}
		if ev.TrainerID != nil {
			fields = append(fields, zap.Uint64("trainer_id", *ev.TrainerID))
		}
		if ev.PackageID != nil {
			fields = append(fields, zap.Uint64("package_id", *ev.PackageID))
		}
		if ev.SessionsUsed != nil {
			fields = append(fields, zap.Int("sessions_used", *ev.SessionsUsed), zap.String("package_status", ev.PackageStatus))
		}
		c.activity.Info("booking status changed", fields...)
	default:
		return fmt.Errorf("unknown queue %q", queueName)
	}
	return nil
}
