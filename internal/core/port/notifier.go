package port

import "context"

// Notification kinds handed off for delivery.
const (
	NotificationVerificationIssued     = "account.verification_issued"
	NotificationAccountActivated       = "account.activated"
	NotificationPasswordResetRequested = "account.password_reset_requested"
	NotificationPasswordChanged        = "account.password_changed"
)

// Notification is the delivery-agnostic payload handed to the outbound
// notification collaborator. Body carries the raw token for link-bearing
// kinds; it must never be persisted by this service.
type Notification struct {
	Kind      string
	AccountID string
	Address   string
	Subject   string
	Body      string
	Metadata  map[string]string
}

// Notifier hands notifications off for best-effort delivery. Callers treat
// Send as fire-and-forget: a delivery failure is logged, never propagated
// into the state transition that triggered it.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
