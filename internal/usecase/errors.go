package usecase

import "errors"

var (
	// ErrAccountNotFound indicates no account exists for the given address or ID.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTokenNotFound indicates the presented token does not exist.
	ErrTokenNotFound = errors.New("verification token not found")
	// ErrTokenExpired indicates the token exists but its validity window elapsed.
	ErrTokenExpired = errors.New("verification token expired")
	// ErrTokenAlreadyUsed indicates the token was consumed before.
	ErrTokenAlreadyUsed = errors.New("verification token already used")
	// ErrAccountNotEligible indicates a status guard failure, e.g. activating
	// an account that is no longer pending.
	ErrAccountNotEligible = errors.New("account not eligible for this operation")
	// ErrPasswordMismatch indicates the supplied current password is wrong.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrBadCredentials indicates the identifier or password is incorrect.
	// Missing accounts fold into this error to prevent enumeration.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrAccountSuspended indicates a suspended account passed the credential
	// check; no session is issued.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrEmailNotVerified indicates the account has not completed verification.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrPasswordPolicyViolation indicates the password does not satisfy policy.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrEmailTaken indicates registration collided with an existing account.
	ErrEmailTaken = errors.New("email already registered")
)
