package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher and port.Notifier using Kafka.
// Notifications are published as events for a downstream delivery worker; the
// token value in the body never touches this service's own storage.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AccountID string           `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes accounts.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID    string         `json:"account_id"`
		CustomerID   string         `json:"customer_id"`
		Email        string         `json:"email"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:    event.AccountID,
		CustomerID:   event.CustomerID,
		Email:        event.Email,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "accounts.registered", event.AccountID, event.RegisteredAt, payload)
}

// PublishAccountActivated publishes accounts.activated events.
func (p *EventPublisher) PublishAccountActivated(ctx context.Context, event domain.AccountActivatedEvent) error {
	payload := struct {
		AccountID   string         `json:"account_id"`
		Email       string         `json:"email"`
		ActivatedAt time.Time      `json:"activated_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:   event.AccountID,
		Email:       event.Email,
		ActivatedAt: event.ActivatedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "accounts.activated", event.AccountID, event.ActivatedAt, payload)
}

// PublishPasswordChanged publishes accounts.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		AccountID string         `json:"account_id"`
		ChangedAt time.Time      `json:"changed_at"`
		Source    string         `json:"source"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		AccountID: event.AccountID,
		ChangedAt: event.ChangedAt.UTC(),
		Source:    event.Source,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "accounts.password.changed", event.AccountID, event.ChangedAt, payload)
}

// PublishPasswordResetRequested publishes accounts.password.reset_requested events.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		AccountID         string         `json:"account_id"`
		RequestedAt       time.Time      `json:"requested_at"`
		MaskedDestination string         `json:"masked_destination,omitempty"`
		ExpiresAt         time.Time      `json:"expires_at"`
		Metadata          map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:         event.AccountID,
		RequestedAt:       event.RequestedAt.UTC(),
		MaskedDestination: event.MaskedDestination,
		ExpiresAt:         event.ExpiresAt.UTC(),
		Metadata:          event.Metadata,
	}

	return p.publish(ctx, event.EventID, "accounts.password.reset_requested", event.AccountID, event.RequestedAt, payload)
}

// Send implements port.Notifier: the notification is enqueued for the
// downstream delivery worker under a per-kind topic.
func (p *EventPublisher) Send(ctx context.Context, n port.Notification) error {
	payload := struct {
		AccountID string            `json:"account_id"`
		Address   string            `json:"address"`
		Subject   string            `json:"subject"`
		Body      string            `json:"body"`
		Metadata  map[string]string `json:"metadata,omitempty"`
	}{
		AccountID: n.AccountID,
		Address:   n.Address,
		Subject:   n.Subject,
		Body:      n.Body,
		Metadata:  n.Metadata,
	}

	return p.publish(ctx, "", "notifications."+n.Kind, n.AccountID, time.Time{}, payload)
}

var (
	_ port.EventPublisher = (*EventPublisher)(nil)
	_ port.Notifier       = (*EventPublisher)(nil)
)
