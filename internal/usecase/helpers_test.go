package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
	"github.com/damianS7/photogram-backend-sub000/internal/repository/memory"
)

// fakeClock is a settable time source shared by the services under test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// captureNotifier records every notification handed off, optionally failing.
type captureNotifier struct {
	mu   sync.Mutex
	sent []port.Notification
	err  error
}

func (n *captureNotifier) Send(_ context.Context, notification port.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *captureNotifier) byKind(kind string) []port.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []port.Notification
	for _, notification := range n.sent {
		if notification.Kind == kind {
			out = append(out, notification)
		}
	}
	return out
}

// captureEvents records the lifecycle events a flow emitted.
type captureEvents struct {
	mu             sync.Mutex
	registered     []domain.AccountRegisteredEvent
	activated      []domain.AccountActivatedEvent
	passwordChange []domain.PasswordChangedEvent
	resetRequested []domain.PasswordResetRequestedEvent
	err            error
}

func (e *captureEvents) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.registered = append(e.registered, event)
	return nil
}

func (e *captureEvents) PublishAccountActivated(_ context.Context, event domain.AccountActivatedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.activated = append(e.activated, event)
	return nil
}

func (e *captureEvents) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.passwordChange = append(e.passwordChange, event)
	return nil
}

func (e *captureEvents) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.resetRequested = append(e.resetRequested, event)
	return nil
}

// plainHasher is a deterministic stand-in for the Argon2 hasher.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) {
	return "digest:" + plaintext, nil
}

func (plainHasher) Verify(plaintext, digest string) (bool, error) {
	return digest == "digest:"+plaintext, nil
}

type stubPolicy struct {
	err error
}

func (p stubPolicy) Validate(string) error {
	return p.err
}

type stubSessions struct {
	mu     sync.Mutex
	token  string
	err    error
	claims []map[string]string
}

func (s *stubSessions) Issue(claims map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.claims = append(s.claims, claims)
	return s.token, nil
}

// memCache is an in-process port.ConsumedTokenCache.
type memCache struct {
	mu      sync.Mutex
	entries map[string]bool
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]bool)}
}

func (c *memCache) MarkConsumed(_ context.Context, hash string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hash] = true
	return nil
}

func (c *memCache) WasConsumed(_ context.Context, hash string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[hash], nil
}

// fixture assembles the services over the in-memory store with a fake clock.
type fixture struct {
	store    *memory.Store
	clock    *fakeClock
	notifier *captureNotifier
	events   *captureEvents
	sessions *stubSessions

	tokens       *TokenService
	registration *RegistrationService
	lifecycle    *LifecycleService
	credentials  *CredentialService
	auth         *AuthService
}

const (
	testVerificationTTL = 24 * time.Hour
	testResetTTL        = 2 * time.Hour
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    memory.NewStore(),
		clock:    newFakeClock(time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)),
		notifier: &captureNotifier{},
		events:   &captureEvents{},
		sessions: &stubSessions{token: "session-token"},
	}

	log := zap.NewNop()
	f.tokens = NewTokenService(f.store.Tokens, testVerificationTTL, testResetTTL, log, WithTokenClock(f.clock.Now))
	f.registration = NewRegistrationService(f.store.Accounts, f.tokens, plainHasher{}, stubPolicy{}, f.notifier, f.events, log)
	f.registration.now = f.clock.Now
	f.lifecycle = NewLifecycleService(f.store.Accounts, f.store, f.tokens, f.notifier, f.events, log)
	f.lifecycle.now = f.clock.Now
	f.credentials = NewCredentialService(f.store.Accounts, f.store, f.tokens, plainHasher{}, stubPolicy{}, f.notifier, f.events, log)
	f.credentials.now = f.clock.Now
	f.auth = NewAuthService(f.store.Accounts, plainHasher{}, f.sessions, log)

	return f
}

// seedAccount inserts an account directly into the store. The plaintext
// password is always "opensesame1" under plainHasher.
func (f *fixture) seedAccount(t *testing.T, status domain.AccountStatus) domain.Account {
	t.Helper()

	id := uuid.NewString()
	account := domain.Account{
		ID:           id,
		CustomerID:   uuid.NewString(),
		Email:        fmt.Sprintf("user-%s@example.com", id[:8]),
		PasswordHash: "digest:opensesame1",
		Status:       status,
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	if err := f.store.Accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

// mustAccount fetches an account by ID straight from the store.
func (f *fixture) mustAccount(t *testing.T, id string) domain.Account {
	t.Helper()

	account, err := f.store.Accounts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("fetch account %s: %v", id, err)
	}
	return *account
}
