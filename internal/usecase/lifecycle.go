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

// LifecycleService drives accounts from pending to active. Activation
// consumes the verification token and flips the status in one unit of work,
// so two racing submissions of the same token resolve to exactly one winner.
type LifecycleService struct {
	accounts port.AccountRepository
	uow      port.UnitOfWork
	tokens   *TokenService
	notifier port.Notifier
	events   port.EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// NewLifecycleService wires a LifecycleService.
func NewLifecycleService(
	accounts port.AccountRepository,
	uow port.UnitOfWork,
	tokens *TokenService,
	notifier port.Notifier,
	events port.EventPublisher,
	log *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		accounts: accounts,
		uow:      uow,
		tokens:   tokens,
		notifier: notifier,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// RequestVerification issues a fresh verification token for a pending
// account, superseding any earlier one, and hands it off for delivery.
// Accounts that are already active or suspended are not eligible.
func (s *LifecycleService) RequestVerification(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("request verification: %w", err)
	}

	if !account.CanActivate() {
		return ErrAccountNotEligible
	}

	raw, token, err := s.tokens.Issue(ctx, account.ID, domain.TokenPurposeAccountVerification)
	if err != nil {
		return fmt.Errorf("request verification: %w", err)
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

	s.log.Info("verification token reissued",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)))

	return nil
}

// Activate redeems a verification token and moves its account from pending
// to active. The token is consumed at most once: the consume and the status
// flip both carry guards and commit together or not at all.
func (s *LifecycleService) Activate(ctx context.Context, rawToken string) (*domain.Account, error) {
	token, err := s.tokens.Verify(ctx, rawToken, domain.TokenPurposeAccountVerification)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, token.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("activate: %w", err)
	}

	if !account.CanActivate() {
		return nil, ErrAccountNotEligible
	}

	now := s.now().UTC()
	err = s.uow.Within(ctx, func(accounts port.AccountRepository, tokens port.TokenRepository) error {
		if err := tokens.Consume(ctx, token.ID, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Lost the race: someone consumed this token first.
				return ErrTokenAlreadyUsed
			}
			return fmt.Errorf("consume token: %w", err)
		}

		if err := accounts.UpdateStatus(ctx, account.ID, domain.AccountStatusPending, domain.AccountStatusActive, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotEligible
			}
			return fmt.Errorf("update status: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTokenAlreadyUsed) || errors.Is(err, ErrAccountNotEligible) {
			return nil, err
		}
		return nil, fmt.Errorf("activate: %w", err)
	}

	s.tokens.RememberConsumed(ctx, *token)

	account.Status = domain.AccountStatusActive
	account.UpdatedAt = now

	s.deliver(ctx, port.Notification{
		Kind:      port.NotificationAccountActivated,
		AccountID: account.ID,
		Address:   account.Email,
		Subject:   "Welcome to Photogram",
		Body:      "Your account is now active.",
	})

	if err := s.events.PublishAccountActivated(ctx, domain.AccountActivatedEvent{
		EventID:     uuid.NewString(),
		AccountID:   account.ID,
		Email:       account.Email,
		ActivatedAt: now,
	}); err != nil {
		s.log.Warn("publish account activated event failed",
			zap.String("account_id", account.ID), zap.Error(err))
	}

	s.log.Info("account activated",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)))

	return account, nil
}

func (s *LifecycleService) deliver(ctx context.Context, n port.Notification) {
	if err := s.notifier.Send(ctx, n); err != nil {
		s.log.Warn("notification hand-off failed",
			zap.String("kind", n.Kind),
			zap.String("account_id", n.AccountID),
			zap.Error(err))
	}
}
