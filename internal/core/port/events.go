package port

import (
	"context"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
)

// EventPublisher emits account lifecycle events for downstream consumers
// (feed, moderation, analytics). Publishing is best-effort; a failed publish
// never rolls back the state transition that produced the event.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishAccountActivated(ctx context.Context, event domain.AccountActivatedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
}
