package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
)

func TestChangePasswordRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusActive)

	if err := f.credentials.ChangePassword(ctx, account.ID, "opensesame1", "newsesame22"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	stored := f.mustAccount(t, account.ID)
	if stored.PasswordHash != "digest:newsesame22" {
		t.Fatalf("digest = %s", stored.PasswordHash)
	}

	if len(f.events.passwordChange) != 1 || f.events.passwordChange[0].Source != passwordSourceAuthenticated {
		t.Fatalf("password change events = %+v", f.events.passwordChange)
	}
	if sent := f.notifier.byKind(port.NotificationPasswordChanged); len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusActive)

	err := f.credentials.ChangePassword(ctx, account.ID, "not-the-password", "newsesame22")
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("got %v, want ErrPasswordMismatch", err)
	}
	if stored := f.mustAccount(t, account.ID); stored.PasswordHash != "digest:opensesame1" {
		t.Fatalf("digest changed: %s", stored.PasswordHash)
	}
}

func TestChangePasswordUnknownAccount(t *testing.T) {
	f := newFixture(t)

	err := f.credentials.ChangePassword(context.Background(), "missing-id", "opensesame1", "newsesame22")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("got %v, want ErrAccountNotFound", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusActive)

	if err := f.credentials.RequestPasswordReset(ctx, account.Email); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	sent := f.notifier.byKind(port.NotificationPasswordResetRequested)
	if len(sent) != 1 {
		t.Fatalf("reset notifications = %d, want 1", len(sent))
	}
	if len(f.events.resetRequested) != 1 {
		t.Fatalf("reset events = %d, want 1", len(f.events.resetRequested))
	}
	if got := f.events.resetRequested[0].MaskedDestination; got == account.Email || got == "" {
		t.Fatalf("destination not masked: %q", got)
	}

	raw := sent[0].Body
	if err := f.credentials.ConfirmPasswordReset(ctx, raw, "newsesame22"); err != nil {
		t.Fatalf("confirm reset: %v", err)
	}
	if stored := f.mustAccount(t, account.ID); stored.PasswordHash != "digest:newsesame22" {
		t.Fatalf("digest = %s", stored.PasswordHash)
	}

	// Replaying the consumed token must not touch the credential again.
	err := f.credentials.ConfirmPasswordReset(ctx, raw, "attacker33pw")
	if !errors.Is(err, ErrTokenAlreadyUsed) {
		t.Fatalf("replay: got %v, want ErrTokenAlreadyUsed", err)
	}
	if stored := f.mustAccount(t, account.ID); stored.PasswordHash != "digest:newsesame22" {
		t.Fatalf("replay changed digest: %s", stored.PasswordHash)
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.credentials.RequestPasswordReset(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("got %v, want ErrAccountNotFound", err)
	}
}

func TestRequestPasswordResetPendingAccountAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusPending)

	// Reset issuance is not gated on status: a pending holder may still need
	// to regain control of the credential.
	if err := f.credentials.RequestPasswordReset(ctx, account.Email); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	sent := f.notifier.byKind(port.NotificationPasswordResetRequested)
	if len(sent) != 1 {
		t.Fatalf("reset notifications = %d, want 1", len(sent))
	}
	if err := f.credentials.ConfirmPasswordReset(ctx, sent[0].Body, "newsesame22"); err != nil {
		t.Fatalf("confirm reset: %v", err)
	}
	if stored := f.mustAccount(t, account.ID); stored.Status != domain.AccountStatusPending {
		t.Fatalf("reset changed status to %s", stored.Status)
	}
}

func TestConfirmPasswordResetExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusActive)

	if err := f.credentials.RequestPasswordReset(ctx, account.Email); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	raw := f.notifier.byKind(port.NotificationPasswordResetRequested)[0].Body

	f.clock.Advance(testResetTTL + time.Second)
	err := f.credentials.ConfirmPasswordReset(ctx, raw, "newsesame22")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
	if stored := f.mustAccount(t, account.ID); stored.PasswordHash != "digest:opensesame1" {
		t.Fatalf("expired token changed digest: %s", stored.PasswordHash)
	}
}

func TestRequestPasswordResetMixedCaseEmail(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, domain.AccountStatusActive)

	if err := f.credentials.RequestPasswordReset(context.Background(), strings.ToUpper(account.Email)); err != nil {
		t.Fatalf("request reset with mixed-case address: %v", err)
	}
	if sent := f.notifier.byKind(port.NotificationPasswordResetRequested); len(sent) != 1 {
		t.Fatalf("expected 1 reset notification, got %d", len(sent))
	}
}
