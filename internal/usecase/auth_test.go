package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
)

func TestAuthenticateSuccess(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, domain.AccountStatusActive)

	session, got, err := f.auth.Authenticate(context.Background(), account.Email, "opensesame1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session != "session-token" {
		t.Fatalf("session = %q", session)
	}
	if got.ID != account.ID {
		t.Fatalf("account = %s, want %s", got.ID, account.ID)
	}
	if len(f.sessions.claims) != 1 || f.sessions.claims[0]["sub"] != account.ID {
		t.Fatalf("session claims = %+v", f.sessions.claims)
	}
}

func TestAuthenticateFoldsMissingAndWrongPassword(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, domain.AccountStatusActive)
	ctx := context.Background()

	_, _, missingErr := f.auth.Authenticate(ctx, "nobody@example.com", "opensesame1")
	_, _, wrongErr := f.auth.Authenticate(ctx, account.Email, "wrong-password")

	if !errors.Is(missingErr, ErrBadCredentials) {
		t.Fatalf("missing account: got %v, want ErrBadCredentials", missingErr)
	}
	if !errors.Is(wrongErr, ErrBadCredentials) {
		t.Fatalf("wrong password: got %v, want ErrBadCredentials", wrongErr)
	}
	// Identical errors, so the response cannot reveal which addresses exist.
	if missingErr.Error() != wrongErr.Error() {
		t.Fatalf("errors differ: %q vs %q", missingErr, wrongErr)
	}
}

func TestAuthenticateSuspendedAccount(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, domain.AccountStatusSuspended)

	_, _, err := f.auth.Authenticate(context.Background(), account.Email, "opensesame1")
	if !errors.Is(err, ErrAccountSuspended) {
		t.Fatalf("got %v, want ErrAccountSuspended", err)
	}
	if len(f.sessions.claims) != 0 {
		t.Fatal("session was issued for a suspended account")
	}
}

func TestAuthenticateSuspendedWrongPassword(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, domain.AccountStatusSuspended)

	// The credential check runs first; a wrong password must not reveal the
	// suspension.
	_, _, err := f.auth.Authenticate(context.Background(), account.Email, "wrong-password")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("got %v, want ErrBadCredentials", err)
	}
}

func TestAuthenticatePendingAccount(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, domain.AccountStatusPending)

	_, _, err := f.auth.Authenticate(context.Background(), account.Email, "opensesame1")
	if !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("got %v, want ErrEmailNotVerified", err)
	}
	if len(f.sessions.claims) != 0 {
		t.Fatal("session was issued for a pending account")
	}
}

func TestAuthenticateMixedCaseEmail(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, domain.AccountStatusActive)

	presented := " " + strings.ToUpper(account.Email) + " "
	session, got, err := f.auth.Authenticate(context.Background(), presented, "opensesame1")
	if err != nil {
		t.Fatalf("authenticate with mixed-case address: %v", err)
	}
	if session == "" {
		t.Fatal("expected a session token")
	}
	if got.ID != account.ID {
		t.Fatalf("resolved wrong account: got %s, want %s", got.ID, account.ID)
	}
}
