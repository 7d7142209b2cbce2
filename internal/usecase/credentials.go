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
	"github.com/damianS7/photogram-backend-sub000/internal/infra/logger"
	"github.com/damianS7/photogram-backend-sub000/internal/repository"
)

// Password change sources carried on the emitted event.
const (
	passwordSourceAuthenticated = "authenticated_change"
	passwordSourceReset         = "password_reset"
)

// CredentialService rotates account passwords, either authenticated with the
// current password or through the reset-token flow.
type CredentialService struct {
	accounts port.AccountRepository
	uow      port.UnitOfWork
	tokens   *TokenService
	hasher   port.PasswordHasher
	policy   PasswordPolicy
	notifier port.Notifier
	events   port.EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// NewCredentialService wires a CredentialService.
func NewCredentialService(
	accounts port.AccountRepository,
	uow port.UnitOfWork,
	tokens *TokenService,
	hasher port.PasswordHasher,
	policy PasswordPolicy,
	notifier port.Notifier,
	events port.EventPublisher,
	log *zap.Logger,
) *CredentialService {
	return &CredentialService{
		accounts: accounts,
		uow:      uow,
		tokens:   tokens,
		hasher:   hasher,
		policy:   policy,
		notifier: notifier,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// ChangePassword rotates the password of an authenticated account. The
// current password must verify against the stored digest before the new one
// is accepted.
func (s *CredentialService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("change password: %w", err)
	}

	ok, err := s.hasher.Verify(currentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: verify current: %w", err)
	}
	if !ok {
		return ErrPasswordMismatch
	}

	if err := s.policy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrPasswordPolicyViolation, err)
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}

	now := s.now().UTC()
	if err := s.accounts.UpdatePassword(ctx, account.ID, digest, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("change password: %w", err)
	}

	s.afterPasswordChange(ctx, account, now, passwordSourceAuthenticated)
	return nil
}

// RequestPasswordReset issues a reset token for the account behind the email
// and hands it off for delivery. Issuance is not gated on account status: a
// pending or suspended holder may still need to regain control of the
// credential. Callers translate ErrAccountNotFound into a neutral outward
// response so the endpoint does not confirm which addresses exist.
func (s *CredentialService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("request password reset: %w", err)
	}

	raw, token, err := s.tokens.Issue(ctx, account.ID, domain.TokenPurposePasswordReset)
	if err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}

	s.deliver(ctx, port.Notification{
		Kind:      port.NotificationPasswordResetRequested,
		AccountID: account.ID,
		Address:   account.Email,
		Subject:   "Reset your Photogram password",
		Body:      raw,
		Metadata: map[string]string{
			"expires_at": token.ExpiresAt.Format(time.RFC3339),
		},
	})

	if err := s.events.PublishPasswordResetRequested(ctx, domain.PasswordResetRequestedEvent{
		EventID:           uuid.NewString(),
		AccountID:         account.ID,
		RequestedAt:       token.CreatedAt,
		MaskedDestination: logger.MaskEmail(account.Email),
		ExpiresAt:         token.ExpiresAt,
	}); err != nil {
		s.log.Warn("publish password reset requested event failed",
			zap.String("account_id", account.ID), zap.Error(err))
	}

	s.log.Info("password reset requested",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)))

	return nil
}

// ConfirmPasswordReset redeems a reset token and installs the new password.
// The password write and the token consumption commit together; a token that
// lost the consume race leaves the password untouched.
func (s *CredentialService) ConfirmPasswordReset(ctx context.Context, rawToken, newPassword string) error {
	token, err := s.tokens.Verify(ctx, rawToken, domain.TokenPurposePasswordReset)
	if err != nil {
		return err
	}

	account, err := s.accounts.GetByID(ctx, token.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("confirm password reset: %w", err)
	}

	if err := s.policy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrPasswordPolicyViolation, err)
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("confirm password reset: hash: %w", err)
	}

	now := s.now().UTC()
	err = s.uow.Within(ctx, func(accounts port.AccountRepository, tokens port.TokenRepository) error {
		if err := tokens.Consume(ctx, token.ID, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTokenAlreadyUsed
			}
			return fmt.Errorf("consume token: %w", err)
		}

		if err := accounts.UpdatePassword(ctx, account.ID, digest, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("update password: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTokenAlreadyUsed) || errors.Is(err, ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("confirm password reset: %w", err)
	}

	s.tokens.RememberConsumed(ctx, *token)
	s.afterPasswordChange(ctx, account, now, passwordSourceReset)
	return nil
}

func (s *CredentialService) afterPasswordChange(ctx context.Context, account *domain.Account, at time.Time, source string) {
	s.deliver(ctx, port.Notification{
		Kind:      port.NotificationPasswordChanged,
		AccountID: account.ID,
		Address:   account.Email,
		Subject:   "Your Photogram password was changed",
		Body:      "If this wasn't you, reset your password immediately.",
	})

	if err := s.events.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		AccountID: account.ID,
		ChangedAt: at,
		Source:    source,
	}); err != nil {
		s.log.Warn("publish password changed event failed",
			zap.String("account_id", account.ID), zap.Error(err))
	}

	s.log.Info("password changed",
		zap.String("account_id", account.ID),
		zap.String("source", source))
}

func (s *CredentialService) deliver(ctx context.Context, n port.Notification) {
	if err := s.notifier.Send(ctx, n); err != nil {
		s.log.Warn("notification hand-off failed",
			zap.String("kind", n.Kind),
			zap.String("account_id", n.AccountID),
			zap.Error(err))
	}
}
