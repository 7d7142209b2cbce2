// Package memory provides mutex-guarded in-memory implementations of the
// persistence ports. They back service-level tests, including the concurrent
// activation ones, without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
	"github.com/damianS7/photogram-backend-sub000/internal/repository"
)

// Store holds accounts and verification tokens behind a single mutex so the
// unit of work can offer the same all-or-nothing semantics as a transaction.
type Store struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	tokens   map[string]domain.VerificationToken // keyed by token ID

	Accounts *AccountRepository
	Tokens   *TokenRepository
}

// NewStore constructs an empty in-memory store with its repositories wired.
func NewStore() *Store {
	s := &Store{
		accounts: make(map[string]domain.Account),
		tokens:   make(map[string]domain.VerificationToken),
	}
	s.Accounts = &AccountRepository{store: s}
	s.Tokens = &TokenRepository{store: s}
	return s
}

// Within serializes fn under the store mutex. Writes inside fn mutate a
// scratch copy that is merged back only when fn succeeds.
func (s *Store) Within(ctx context.Context, fn func(accounts port.AccountRepository, tokens port.TokenRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scratch := &Store{
		accounts: cloneAccounts(s.accounts),
		tokens:   cloneTokens(s.tokens),
	}
	scratch.Accounts = &AccountRepository{store: scratch, unlocked: true}
	scratch.Tokens = &TokenRepository{store: scratch, unlocked: true}

	if err := fn(scratch.Accounts, scratch.Tokens); err != nil {
		return err
	}

	s.accounts = scratch.accounts
	s.tokens = scratch.tokens
	return nil
}

func cloneAccounts(src map[string]domain.Account) map[string]domain.Account {
	dst := make(map[string]domain.Account, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneTokens(src map[string]domain.VerificationToken) map[string]domain.VerificationToken {
	dst := make(map[string]domain.VerificationToken, len(src))
	for k, v := range src {
		if v.UsedAt != nil {
			usedAt := *v.UsedAt
			v.UsedAt = &usedAt
		}
		dst[k] = v
	}
	return dst
}

// AccountRepository is the in-memory port.AccountRepository.
type AccountRepository struct {
	store    *Store
	unlocked bool // true when running inside Within, which already holds the lock
}

func (r *AccountRepository) lock() func() {
	if r.unlocked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) error {
	defer r.lock()()
	for _, existing := range r.store.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicate
		}
	}
	r.store.accounts[account.ID] = account
	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	defer r.lock()()
	account, ok := r.store.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	defer r.lock()()
	for _, account := range r.store.accounts {
		if account.Email == email {
			found := account
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *AccountRepository) UpdateStatus(_ context.Context, id string, from, to domain.AccountStatus, at time.Time) error {
	defer r.lock()()
	account, ok := r.store.accounts[id]
	if !ok || account.Status != from {
		return repository.ErrNotFound
	}
	account.Status = to
	account.UpdatedAt = at
	r.store.accounts[id] = account
	return nil
}

func (r *AccountRepository) UpdatePassword(_ context.Context, id string, passwordHash string, changedAt time.Time) error {
	defer r.lock()()
	account, ok := r.store.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.UpdatedAt = changedAt
	r.store.accounts[id] = account
	return nil
}

// TokenRepository is the in-memory port.TokenRepository.
type TokenRepository struct {
	store    *Store
	unlocked bool
}

func (r *TokenRepository) lock() func() {
	if r.unlocked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *TokenRepository) Upsert(_ context.Context, token domain.VerificationToken) error {
	defer r.lock()()
	for id, existing := range r.store.tokens {
		if existing.AccountID == token.AccountID && existing.Purpose == token.Purpose {
			delete(r.store.tokens, id)
			break
		}
	}
	token.UsedAt = nil
	r.store.tokens[token.ID] = token
	return nil
}

func (r *TokenRepository) GetByHash(_ context.Context, hash string) (*domain.VerificationToken, error) {
	defer r.lock()()
	for _, token := range r.store.tokens {
		if token.ValueHash == hash {
			found := token
			if token.UsedAt != nil {
				usedAt := *token.UsedAt
				found.UsedAt = &usedAt
			}
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *TokenRepository) Consume(_ context.Context, id string, at time.Time) error {
	defer r.lock()()
	token, ok := r.store.tokens[id]
	if !ok || token.UsedAt != nil {
		return repository.ErrNotFound
	}
	usedAt := at
	token.UsedAt = &usedAt
	r.store.tokens[id] = token
	return nil
}

var (
	_ port.AccountRepository = (*AccountRepository)(nil)
	_ port.TokenRepository   = (*TokenRepository)(nil)
	_ port.UnitOfWork        = (*Store)(nil)
)
