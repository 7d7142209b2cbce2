package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/logger"
	"github.com/damianS7/photogram-backend-sub000/internal/repository"
)

// AuthService authenticates accounts and mints session credentials. A missing
// account and a wrong password produce the same error, so the endpoint never
// confirms which addresses exist.
type AuthService struct {
	accounts port.AccountRepository
	hasher   port.PasswordHasher
	sessions port.SessionIssuer
	log      *zap.Logger
}

// NewAuthService wires an AuthService.
func NewAuthService(accounts port.AccountRepository, hasher port.PasswordHasher, sessions port.SessionIssuer, log *zap.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		sessions: sessions,
		log:      log,
	}
}

// Authenticate verifies the credential pair and returns a session token.
// Status checks run only after the credential check passes, so a probe with a
// wrong password learns nothing about the account's state.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *domain.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, fmt.Errorf("authenticate: %w", err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("authenticate: verify password: %w", err)
	}
	if !ok {
		return "", nil, ErrBadCredentials
	}

	if account.IsSuspended() {
		return "", nil, ErrAccountSuspended
	}
	if account.Status == domain.AccountStatusPending {
		return "", nil, ErrEmailNotVerified
	}

	session, err := s.sessions.Issue(map[string]string{
		"sub":         account.ID,
		"email":       account.Email,
		"customer_id": account.CustomerID,
	})
	if err != nil {
		return "", nil, fmt.Errorf("authenticate: issue session: %w", err)
	}

	s.log.Info("account authenticated",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)))

	return session, account, nil
}
