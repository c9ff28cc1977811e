// Package redpanda publishes interview lifecycle events to Redpanda/Kafka.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

const (
	// TopicEvaluated is the default topic for evaluated attempts.
	TopicEvaluated = "interview.evaluated"
	// EventEvaluated is the type carried in the event envelope and header.
	EventEvaluated = "interview.evaluated"
)

// EvaluatedEvent is the JSON value of a published evaluation record.
type EvaluatedEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Attempt    domain.Attempt `json:"attempt"`
}

type recordProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher implements domain.EventPublisher on an idempotent Kafka producer.
type Publisher struct {
	client recordProducer
	topic  string
	now    func() time.Time
}

// NewPublisher connects to brokers, ensures topic exists and returns a Publisher.
func NewPublisher(ctx context.Context, brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		topic = TopicEvaluated
	}
	slog.Info("creating redpanda publisher", slog.Any("brokers", brokers), slog.String("topic", topic))

	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))),
	)
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.WithHooks(kotelService.Hooks()...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
		kgo.DialTimeout(10*time.Second),
		kgo.RecordDeliveryTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic, 1, 1); err != nil {
		// The broker may auto-create topics or forbid admin requests.
		slog.Warn("failed to ensure topic", slog.String("topic", topic), slog.Any("error", err))
	}
	return newPublisher(client, topic), nil
}

func newPublisher(c recordProducer, topic string) *Publisher {
	return &Publisher{client: c, topic: topic, now: func() time.Time { return time.Now().UTC() }}
}

// PublishEvaluated writes one record keyed by session id.
func (p *Publisher) PublishEvaluated(ctx domain.Context, a domain.Attempt) error {
	b, err := json.Marshal(EvaluatedEvent{Type: EventEvaluated, OccurredAt: p.now(), Attempt: a})
	if err != nil {
		return fmt.Errorf("op=redpanda.PublishEvaluated: marshal: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(a.SessionID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(EventEvaluated)},
			{Key: "session_id", Value: []byte(a.SessionID)},
			{Key: "interview_id", Value: []byte(a.InterviewID)},
			{Key: "rating", Value: []byte(a.OverallRating())},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		observability.ObservePublish(p.topic, "error")
		return fmt.Errorf("op=redpanda.PublishEvaluated: produce: %w", err)
	}
	observability.ObservePublish(p.topic, "ok")
	observability.LoggerFromContext(ctx).Info("evaluation event published",
		slog.String("topic", p.topic),
		slog.String("session_id", a.SessionID))
	return nil
}

// Close flushes and closes the underlying client.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

// NoopPublisher drops events; used when no brokers are configured.
type NoopPublisher struct{}

// PublishEvaluated implements domain.EventPublisher.
func (NoopPublisher) PublishEvaluated(domain.Context, domain.Attempt) error { return nil }
