package port

import (
	"context"
	"time"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
)

// TokenRepository manages verification-token records. At most one token row
// exists per (account, purpose) pair; Upsert supersedes any prior token for
// the same slot in a single atomic write.
type TokenRepository interface {
	Upsert(ctx context.Context, token domain.VerificationToken) error
	GetByHash(ctx context.Context, hash string) (*domain.VerificationToken, error)
	// Consume marks the token used, guarded on it being unused. A missing row
	// or an already-used token surfaces as repository.ErrNotFound so that two
	// racing consumers resolve to exactly one winner.
	Consume(ctx context.Context, id string, at time.Time) error
}

// UnitOfWork runs a function against transactional views of the account and
// token repositories. Either every write inside fn commits or none does.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(accounts AccountRepository, tokens TokenRepository) error) error
}
