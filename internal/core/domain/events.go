package domain

import "time"

// AccountRegisteredEvent signals that a new account entered the pending state.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	CustomerID   string
	Email        string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// AccountActivatedEvent signals a successful verification-token consumption.
type AccountActivatedEvent struct {
	EventID     string
	AccountID   string
	Email       string
	ActivatedAt time.Time
	Metadata    map[string]any
}

// PasswordChangedEvent signals a credential rotation, whether authenticated
// or token-driven.
type PasswordChangedEvent struct {
	EventID   string
	AccountID string
	ChangedAt time.Time
	Source    string
	Metadata  map[string]any
}

// PasswordResetRequestedEvent signals that a reset token was issued and
// handed off for delivery.
type PasswordResetRequestedEvent struct {
	EventID           string
	AccountID         string
	RequestedAt       time.Time
	MaskedDestination string
	ExpiresAt         time.Time
	Metadata          map[string]any
}
