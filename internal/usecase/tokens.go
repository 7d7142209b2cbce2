package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/security"
	"github.com/damianS7/photogram-backend-sub000/internal/repository"
)

const tokenByteLength = 32

// TokenService issues and verifies single-use verification tokens. Issuing a
// token for an (account, purpose) slot supersedes whatever token previously
// occupied that slot, so at most one token per slot is ever live.
type TokenService struct {
	tokens          port.TokenRepository
	consumed        port.ConsumedTokenCache
	log             *zap.Logger
	now             func() time.Time
	verificationTTL time.Duration
	resetTTL        time.Duration
}

// TokenServiceOption customizes a TokenService.
type TokenServiceOption func(*TokenService)

// WithTokenClock overrides the time source, used by tests.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// WithConsumedTokenCache installs a best-effort cache of consumed token
// hashes. Cache failures degrade to primary-store checks, never to errors.
func WithConsumedTokenCache(cache port.ConsumedTokenCache) TokenServiceOption {
	return func(s *TokenService) {
		s.consumed = cache
	}
}

// NewTokenService creates a TokenService with per-purpose validity windows.
func NewTokenService(tokens port.TokenRepository, verificationTTL, resetTTL time.Duration, log *zap.Logger, opts ...TokenServiceOption) *TokenService {
	s := &TokenService{
		tokens:          tokens,
		log:             log,
		now:             time.Now,
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) ttl(purpose domain.TokenPurpose) time.Duration {
	if purpose == domain.TokenPurposePasswordReset {
		return s.resetTTL
	}
	return s.verificationTTL
}

// Issue mints a fresh token for the account and purpose, overwriting any
// prior token in the same slot. The returned raw value is the only copy that
// ever exists outside the caller; storage keeps the hash.
func (s *TokenService) Issue(ctx context.Context, accountID string, purpose domain.TokenPurpose) (string, domain.VerificationToken, error) {
	if !purpose.Valid() {
		return "", domain.VerificationToken{}, fmt.Errorf("issue token: unknown purpose %q", purpose)
	}

	raw, err := security.GenerateSecureToken(tokenByteLength)
	if err != nil {
		return "", domain.VerificationToken{}, fmt.Errorf("issue %s token: %w", purpose, err)
	}

	now := s.now().UTC()
	token := domain.VerificationToken{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Purpose:   purpose,
		ValueHash: security.HashToken(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl(purpose)),
	}

	if err := s.tokens.Upsert(ctx, token); err != nil {
		return "", domain.VerificationToken{}, fmt.Errorf("issue %s token: %w", purpose, err)
	}

	return raw, token, nil
}

// Verify resolves a raw token value and checks that it is live for the given
// purpose. Verification never consumes the token; consumption is a separate
// guarded write owned by the flow that applies the token's effect.
func (s *TokenService) Verify(ctx context.Context, raw string, purpose domain.TokenPurpose) (*domain.VerificationToken, error) {
	hash := security.HashToken(raw)

	if s.consumed != nil {
		was, err := s.consumed.WasConsumed(ctx, hash)
		if err != nil {
			s.log.Warn("consumed-token cache lookup failed", zap.Error(err))
		} else if was {
			return nil, ErrTokenAlreadyUsed
		}
	}

	token, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	// A token presented to the wrong flow is indistinguishable from a
	// non-existent one.
	if token.Purpose != purpose {
		return nil, ErrTokenNotFound
	}

	// Expiry wins over consumption when both hold: past the deadline the
	// token is dead regardless of what happened to it before.
	if token.IsExpired(s.now().UTC()) {
		return nil, ErrTokenExpired
	}
	if token.IsUsed() {
		return nil, ErrTokenAlreadyUsed
	}

	return token, nil
}

// RememberConsumed records the token hash in the consumed cache so duplicate
// submissions short-circuit without hitting the primary store. Best effort;
// failures are logged and ignored.
func (s *TokenService) RememberConsumed(ctx context.Context, token domain.VerificationToken) {
	if s.consumed == nil {
		return
	}

	// Cache entries die with the token: once ExpiresAt passes the verdict is
	// expiry, and that answer must come from the primary store's row.
	ttl := token.ExpiresAt.Sub(s.now().UTC())
	if ttl <= 0 {
		return
	}
	if err := s.consumed.MarkConsumed(ctx, token.ValueHash, ttl); err != nil {
		s.log.Warn("consumed-token cache write failed", zap.Error(err))
	}
}
