package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
)

func TestActivateFlipsPendingAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusPending)

	raw, _, err := f.tokens.Issue(ctx, account.ID, domain.TokenPurposeAccountVerification)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	activated, err := f.lifecycle.Activate(ctx, raw)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if activated.Status != domain.AccountStatusActive {
		t.Fatalf("returned status = %s", activated.Status)
	}
	if stored := f.mustAccount(t, account.ID); stored.Status != domain.AccountStatusActive {
		t.Fatalf("stored status = %s", stored.Status)
	}

	if len(f.events.activated) != 1 || f.events.activated[0].AccountID != account.ID {
		t.Fatalf("activated events = %+v", f.events.activated)
	}
	if sent := f.notifier.byKind(port.NotificationAccountActivated); len(sent) != 1 {
		t.Fatalf("activation notifications = %d, want 1", len(sent))
	}

	// The same token a second time is a replay.
	if _, err := f.lifecycle.Activate(ctx, raw); !errors.Is(err, ErrTokenAlreadyUsed) {
		t.Fatalf("replay: got %v, want ErrTokenAlreadyUsed", err)
	}
}

func TestActivateUnknownToken(t *testing.T) {
	f := newFixture(t)

	if _, err := f.lifecycle.Activate(context.Background(), "bogus"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("got %v, want ErrTokenNotFound", err)
	}
}

func TestActivateExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusPending)

	raw, _, err := f.tokens.Issue(ctx, account.ID, domain.TokenPurposeAccountVerification)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	f.clock.Advance(testVerificationTTL + time.Second)
	if _, err := f.lifecycle.Activate(ctx, raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
	if stored := f.mustAccount(t, account.ID); stored.Status != domain.AccountStatusPending {
		t.Fatalf("expired activation changed status to %s", stored.Status)
	}
}

func TestActivateSuspendedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusSuspended)

	raw, _, err := f.tokens.Issue(ctx, account.ID, domain.TokenPurposeAccountVerification)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := f.lifecycle.Activate(ctx, raw); !errors.Is(err, ErrAccountNotEligible) {
		t.Fatalf("got %v, want ErrAccountNotEligible", err)
	}
	if stored := f.mustAccount(t, account.ID); stored.Status != domain.AccountStatusSuspended {
		t.Fatalf("suspended account became %s", stored.Status)
	}
}

func TestActivateConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusPending)

	raw, _, err := f.tokens.Issue(ctx, account.ID, domain.TokenPurposeAccountVerification)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const submitters = 16
	errs := make([]error, submitters)
	var wg sync.WaitGroup
	wg.Add(submitters)
	for i := 0; i < submitters; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.lifecycle.Activate(ctx, raw)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrTokenAlreadyUsed), errors.Is(err, ErrAccountNotEligible):
			// Losers observe either the consumed token or the flipped status,
			// depending on when their reads interleaved with the winner.
		default:
			t.Fatalf("submitter %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
	if stored := f.mustAccount(t, account.ID); stored.Status != domain.AccountStatusActive {
		t.Fatalf("final status = %s", stored.Status)
	}
	if len(f.events.activated) != 1 {
		t.Fatalf("activated events = %d, want 1", len(f.events.activated))
	}
}

func TestRequestVerificationReissues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.seedAccount(t, domain.AccountStatusPending)

	firstRaw, _, err := f.tokens.Issue(ctx, account.ID, domain.TokenPurposeAccountVerification)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := f.lifecycle.RequestVerification(ctx, account.Email); err != nil {
		t.Fatalf("request verification: %v", err)
	}

	if _, err := f.lifecycle.Activate(ctx, firstRaw); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("stale token: got %v, want ErrTokenNotFound", err)
	}

	sent := f.notifier.byKind(port.NotificationVerificationIssued)
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if _, err := f.lifecycle.Activate(ctx, sent[0].Body); err != nil {
		t.Fatalf("fresh token: %v", err)
	}
}

func TestRequestVerificationUnknownEmail(t *testing.T) {
	f := newFixture(t)

	if err := f.lifecycle.RequestVerification(context.Background(), "nobody@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("got %v, want ErrAccountNotFound", err)
	}
}

func TestRequestVerificationActiveAccount(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, domain.AccountStatusActive)

	if err := f.lifecycle.RequestVerification(context.Background(), account.Email); !errors.Is(err, ErrAccountNotEligible) {
		t.Fatalf("got %v, want ErrAccountNotEligible", err)
	}
}

func TestRequestVerificationMixedCaseEmail(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, domain.AccountStatusPending)

	if err := f.lifecycle.RequestVerification(context.Background(), strings.ToUpper(account.Email)); err != nil {
		t.Fatalf("request verification with mixed-case address: %v", err)
	}
	if sent := f.notifier.byKind(port.NotificationVerificationIssued); len(sent) != 1 {
		t.Fatalf("expected 1 verification notification, got %d", len(sent))
	}
}
