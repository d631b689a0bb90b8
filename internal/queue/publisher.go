package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-watchlist/internal/metrics"
)

// Publisher sends WatchlistEvents to RabbitMQ. A connection is opened per
// message; event volume is one per user action.
type Publisher struct {
	url    string
	logger *logrus.Logger
}

// NewPublisher returns a Publisher dialing url.
func NewPublisher(url string, logger *logrus.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

// Publish delivers ev as a persistent message on the watchlist queue.
// Errors are logged and returned; callers treat them as non-fatal.
func (p *Publisher) Publish(ctx context.Context, ev WatchlistEvent) error {
	if err := p.publish(ctx, ev); err != nil {
		metrics.EventsPublished.WithLabelValues(string(ev.Type), "error").Inc()
		p.logger.WithError(err).WithFields(logrus.Fields{
			"event_id": ev.EventID,
			"type":     ev.Type,
			"imdb_id":  ev.ImdbID,
		}).Warn("rabbitmq: publish failed")
		return err
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Type), "ok").Inc()
	return nil
}

func (p *Publisher) publish(ctx context.Context, ev WatchlistEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declareQueue(ch); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",             // default exchange
		WatchlistQueue, // routing key = queue name
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.EventID,
			Type:         string(ev.Type),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(WatchlistQueue, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}

// NopPublisher drops every event. It is used when the queue is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, WatchlistEvent) error { return nil }
