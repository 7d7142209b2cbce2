package domain

import "time"

// AccountStatus enumerates the lifecycle states of an account.
type AccountStatus string

const (
	AccountStatusPending   AccountStatus = "pending_verification"
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)

// Account mirrors the persisted representation in the accounts table. It is
// the authentication record bound one-to-one to a customer profile; profile
// data itself lives outside this service.
type Account struct {
	ID           string
	CustomerID   string
	Email        string
	PasswordHash string
	Status       AccountStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanActivate reports whether the account is still waiting for verification.
// Activation from any other state is a conflict, including suspended accounts
// holding a stale verification link.
func (a Account) CanActivate() bool {
	return a.Status == AccountStatusPending
}

// Activate transitions a pending account to active.
// Returns false when the account is not eligible for activation.
func (a *Account) Activate(at time.Time) bool {
	if !a.CanActivate() {
		return false
	}
	a.Status = AccountStatusActive
	a.UpdatedAt = at
	return true
}

// IsSuspended reports whether the account has been administratively suspended.
// Suspension is produced elsewhere; this service only observes it.
func (a Account) IsSuspended() bool {
	return a.Status == AccountStatusSuspended
}
