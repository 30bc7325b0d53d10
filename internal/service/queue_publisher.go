package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/queue"
)

// EventPublisher emits domain events after their transaction commits.
// Failures never undo the committed work; callers log and move on.
type EventPublisher interface {
	PublishPackageActivated(ctx context.Context, ev queue.PackageActivatedEvent) error
	PublishBookingStatusChanged(ctx context.Context, ev queue.BookingStatusChangedEvent) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishPackageActivated(context.Context, queue.PackageActivatedEvent) error {
	return nil
}

func (NopPublisher) PublishBookingStatusChanged(context.Context, queue.BookingStatusChangedEvent) error {
	return nil
}

// AMQPPublisher publishes persistent JSON messages to durable RabbitMQ
// queues, one short-lived connection per event.
type AMQPPublisher struct {
	url string
	log *zap.Logger
}

func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, log: log}
}

func (p *AMQPPublisher) PublishPackageActivated(ctx context.Context, ev queue.PackageActivatedEvent) error {
	return p.publish(ctx, queue.PackageActivatedQueue, ev)
}

func (p *AMQPPublisher) PublishBookingStatusChanged(ctx context.Context, ev queue.BookingStatusChangedEvent) error {
	return p.publish(ctx, queue.BookingStatusChangedQueue, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, queueName string, v any) error {
	log := p.log.With(zap.String("queue", queueName))
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Warn("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Warn("rabbitmq publish failed", zap.Error(err))
		return err
	}
	return nil
}
