package domain

import "time"

// TokenPurpose names the flow a verification token was issued for. Each
// purpose has its own live-token slot per account.
type TokenPurpose string

const (
	TokenPurposeAccountVerification TokenPurpose = "account_verification"
	TokenPurposePasswordReset       TokenPurpose = "password_reset"
)

// Valid reports whether the purpose is one of the defined values.
func (p TokenPurpose) Valid() bool {
	return p == TokenPurposeAccountVerification || p == TokenPurposePasswordReset
}

// VerificationToken is a single-use, time-bounded token bound to one account
// and one purpose. Only the SHA-256 hash of the raw value is persisted; the
// raw value is handed to the owner exactly once at issuance.
type VerificationToken struct {
	ID        string
	AccountID string
	Purpose   TokenPurpose
	ValueHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// IsExpired reports whether the token has elapsed its validity window.
// A token is valid exactly through its expiry instant, not after.
func (t VerificationToken) IsExpired(at time.Time) bool {
	return at.After(t.ExpiresAt)
}

// IsUsed reports whether the token has already been consumed.
func (t VerificationToken) IsUsed() bool {
	return t.UsedAt != nil
}

// IsLive reports whether the token can still be presented.
func (t VerificationToken) IsLive(at time.Time) bool {
	return !t.IsUsed() && !t.IsExpired(at)
}

// Consume marks the token as used. The used state is monotonic: once set it
// is never cleared. Returns true when the token transitioned from unused to used.
func (t *VerificationToken) Consume(at time.Time) bool {
	if t.UsedAt != nil {
		return false
	}
	usedAt := at
	t.UsedAt = &usedAt
	return true
}
