package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/logger"
	"github.com/damianS7/photogram-backend-sub000/internal/repository"
)

// PasswordPolicy checks candidate passwords against complexity rules.
type PasswordPolicy interface {
	Validate(password string) error
}

// RegistrationService creates new accounts in the pending state and kicks off
// their first verification round trip.
type RegistrationService struct {
	accounts port.AccountRepository
	tokens   *TokenService
	hasher   port.PasswordHasher
	policy   PasswordPolicy
	notifier port.Notifier
	events   port.EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// NewRegistrationService wires a RegistrationService.
func NewRegistrationService(
	accounts port.AccountRepository,
	tokens *TokenService,
	hasher port.PasswordHasher,
	policy PasswordPolicy,
	notifier port.Notifier,
	events port.EventPublisher,
	log *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
		policy:   policy,
		notifier: notifier,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// RegisterInput carries the fields needed to open an account.
type RegisterInput struct {
	CustomerID string
	Email      string
	Password   string
}

// Register creates a pending account, issues its first verification token and
// hands the token off for delivery. The account stays pending until the token
// comes back through Activate.
// normalizeEmail canonicalizes an address for storage and lookup. Accounts
// are keyed by the lowercased form, so every address-taking operation runs
// through the same fold before touching the repository.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("register: email is required")
	}

	if err := s.policy.Validate(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPasswordPolicyViolation, err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:           uuid.NewString(),
		CustomerID:   in.CustomerID,
		Email:        email,
		PasswordHash: digest,
		Status:       domain.AccountStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register: create account: %w", err)
	}

	raw, token, err := s.tokens.Issue(ctx, account.ID, domain.TokenPurposeAccountVerification)
	if err != nil {
		// The account exists; a fresh token can be requested later.
		return nil, fmt.Errorf("register: %w", err)
	}

	s.deliver(ctx, port.Notification{
		Kind:      port.NotificationVerificationIssued,
		AccountID: account.ID,
		Address:   account.Email,
		Subject:   "Confirm your Photogram account",
		Body:      raw,
		Metadata: map[string]string{
			"expires_at": token.ExpiresAt.Format(time.RFC3339),
		},
	})

	if err := s.events.PublishAccountRegistered(ctx, domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		CustomerID:   account.CustomerID,
		Email:        account.Email,
		RegisteredAt: now,
	}); err != nil {
		s.log.Warn("publish account registered event failed",
			zap.String("account_id", account.ID), zap.Error(err))
	}

	s.log.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)))

	return &account, nil
}

func (s *RegistrationService) deliver(ctx context.Context, n port.Notification) {
	if err := s.notifier.Send(ctx, n); err != nil {
		s.log.Warn("notification hand-off failed",
			zap.String("kind", n.Kind),
			zap.String("account_id", n.AccountID),
			zap.Error(err))
	}
}
