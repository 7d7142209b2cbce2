package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/logger"
)

// StubPublisher logs events and notifications instead of sending them to
// Kafka. Useful for development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs accounts.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	p.logEvent("accounts.registered", event.AccountID, event.RegisteredAt, map[string]any{
		"customer_id": event.CustomerID,
		"email":       logger.MaskEmail(event.Email),
	})
	return nil
}

// PublishAccountActivated logs accounts.activated events.
func (p *StubPublisher) PublishAccountActivated(_ context.Context, event domain.AccountActivatedEvent) error {
	p.logEvent("accounts.activated", event.AccountID, event.ActivatedAt, map[string]any{
		"email": logger.MaskEmail(event.Email),
	})
	return nil
}

// PublishPasswordChanged logs accounts.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent("accounts.password.changed", event.AccountID, event.ChangedAt, map[string]any{
		"source": event.Source,
	})
	return nil
}

// PublishPasswordResetRequested logs accounts.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	p.logEvent("accounts.password.reset_requested", event.AccountID, event.RequestedAt, map[string]any{
		"masked_destination": event.MaskedDestination,
		"expires_at":         event.ExpiresAt,
	})
	return nil
}

// Send logs the notification hand-off. The body may carry a raw token, so
// only masked fields are logged.
func (p *StubPublisher) Send(_ context.Context, n port.Notification) error {
	p.logger.Info("stub notification dispatched",
		zap.String("kind", n.Kind),
		zap.String("account_id", n.AccountID),
		zap.String("address", logger.MaskEmail(n.Address)),
		zap.String("subject", n.Subject),
	)
	return nil
}

var (
	_ port.EventPublisher = (*StubPublisher)(nil)
	_ port.Notifier       = (*StubPublisher)(nil)
)
