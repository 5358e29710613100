package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"curator/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// SubjectPrefix namespaces every forwarded event subject
	SubjectPrefix = "curator"
	// StreamName is the JetStream stream holding forwarded events
	StreamName = "curator_events"
	// SourceService identifies this process in event envelopes
	SourceService = "curator"
)

// EventEnvelope wraps a serialized event with delivery metadata
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// MessagePublisher is the transport the event publisher writes to
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// PublishRecorder counts forwarded events
type PublishRecorder interface {
	RecordNATSMessagePublished(eventType string)
}

// NATSEventPublisher forwards bus events to NATS subjects
type NATSEventPublisher struct {
	publisher MessagePublisher
	recorder  PublishRecorder
	now       func() time.Time
}

// NewNATSEventPublisher creates a new NATS event publisher. recorder may be nil.
func NewNATSEventPublisher(publisher MessagePublisher, recorder PublishRecorder) *NATSEventPublisher {
	return &NATSEventPublisher{
		publisher: publisher,
		recorder:  recorder,
		now:       time.Now,
	}
}

// SubjectFor maps an event to its NATS subject
func SubjectFor(eventType events.EventType) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

// AllSubjects returns every subject this service publishes to
func AllSubjects() []string {
	subjects := make([]string, len(events.AllEventTypes))
	for i, t := range events.AllEventTypes {
		subjects[i] = SubjectFor(t)
	}
	return subjects
}

// Attach subscribes the publisher to every event type on the bus
func (p *NATSEventPublisher) Attach(bus *events.Bus) {
	bus.SubscribeAll(p.handle)
}

func (p *NATSEventPublisher) handle(ctx context.Context, event events.Event) {
	if err := p.Publish(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"event_type": event.Type(),
			"error":      err,
		}).Error("Failed to forward event to NATS")
	}
}

// Publish serializes an event into an envelope and publishes it
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     p.now().UTC(),
		SourceService: SourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := SubjectFor(event.Type())
	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	if p.recorder != nil {
		p.recorder.RecordNATSMessagePublished(string(event.Type()))
	}

	log.WithFields(log.Fields{
		"event_type": event.Type(),
		"event_id":   envelope.EventID,
		"subject":    subject,
	}).Debug("Forwarded event to NATS")
	return nil
}

// EnsureEventStream creates the event stream on the client's JetStream
func EnsureEventStream(client *NATSClient) error {
	return client.EnsureStream(StreamName, AllSubjects(), "Curator raffle and prediction events")
}
