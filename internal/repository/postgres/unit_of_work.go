package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
)

// UnitOfWork implements port.UnitOfWork on top of pgx transactions. The
// token consume and the account status write that depend on each other
// commit or roll back together.
type UnitOfWork struct {
	pool     *pgxpool.Pool
	accounts *AccountRepository
	tokens   *TokenRepository
}

// NewUnitOfWork constructs a transactional boundary over the provided pool.
func NewUnitOfWork(pool *pgxpool.Pool, accounts *AccountRepository, tokens *TokenRepository) *UnitOfWork {
	return &UnitOfWork{pool: pool, accounts: accounts, tokens: tokens}
}

// Within runs fn against transactional repository views.
func (u *UnitOfWork) Within(ctx context.Context, fn func(accounts port.AccountRepository, tokens port.TokenRepository) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(u.accounts.WithTx(tx), u.tokens.WithTx(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
