package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cinegate/cinema-booking/internal/queue"
)

// EventSink receives booking lifecycle events. Publishing is best-effort:
// implementations must never fail the operation that produced the event.
type EventSink interface {
	Publish(ctx context.Context, ev queue.BookingEvent)
}

// AMQPSink publishes events to the booking.events queue on RabbitMQ. It
// attempts to be robust and to never panic; any error is logged and the
// event dropped, keeping the main request flow intact. Messages are marked
// persistent so they survive broker restarts.
type AMQPSink struct{}

func (AMQPSink) Publish(ctx context.Context, ev queue.BookingEvent) {
	if err := publish(ctx, ev); err != nil {
		log.Printf("rabbitmq: publish %s failed: %v", ev.Type, err)
	}
}

func publish(ctx context.Context, ev queue.BookingEvent) error {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.EventsQueue, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	return ch.PublishWithContext(ctx,
		"",                // default exchange
		queue.EventsQueue, // routing key = queue name
		false,             // mandatory
		false,             // immediate
		pub,
	)
}
