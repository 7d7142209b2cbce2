package port

import (
	"context"
	"time"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// UpdateStatus applies a guarded status transition: the write only takes
	// effect when the current status equals from. A missing row or a failed
	// guard surfaces as repository.ErrNotFound.
	UpdateStatus(ctx context.Context, id string, from, to domain.AccountStatus, at time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
}
