package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/repository"
)

// TokenRepository implements port.TokenRepository using PostgreSQL.
type TokenRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTokenRepository constructs a new token repository.
func NewTokenRepository(db pgExecutor) *TokenRepository {
	return &TokenRepository{
		exec:    db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance executing within the provided transaction.
func (r *TokenRepository) WithTx(tx pgx.Tx) *TokenRepository {
	if tx == nil {
		return r
	}
	return &TokenRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Upsert inserts the token or overwrites the existing row for the same
// (account, purpose) slot. The conflict target enforces the single-live-token
// invariant atomically: readers never observe a half-written value/expiry pair.
func (r *TokenRepository) Upsert(ctx context.Context, token domain.VerificationToken) error {
	stmt, args, err := r.builder.Insert("verification_tokens").
		Columns(
			"id",
			"account_id",
			"purpose",
			"value_hash",
			"created_at",
			"expires_at",
			"used_at",
		).
		Values(
			token.ID,
			token.AccountID,
			token.Purpose,
			token.ValueHash,
			token.CreatedAt,
			token.ExpiresAt,
			token.UsedAt,
		).
		Suffix(`ON CONFLICT (account_id, purpose) DO UPDATE SET
			id = EXCLUDED.id,
			value_hash = EXCLUDED.value_hash,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at,
			used_at = NULL`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert verification token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert verification token: %w", err)
	}

	return nil
}

// GetByHash retrieves a verification token by its hashed value.
func (r *TokenRepository) GetByHash(ctx context.Context, hash string) (*domain.VerificationToken, error) {
	stmt, args, err := r.builder.Select(
		"id",
		"account_id",
		"purpose",
		"value_hash",
		"created_at",
		"expires_at",
		"used_at",
	).
		From("verification_tokens").
		Where(squirrel.Eq{"value_hash": hash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select verification token sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		token  domain.VerificationToken
		usedAt sql.NullTime
	)

	if err := row.Scan(
		&token.ID,
		&token.AccountID,
		&token.Purpose,
		&token.ValueHash,
		&token.CreatedAt,
		&token.ExpiresAt,
		&usedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan verification token: %w", err)
	}

	if usedAt.Valid {
		t := usedAt.Time
		token.UsedAt = &t
	}

	return &token, nil
}

// Consume marks the token used, guarded on used_at still being NULL. Two
// racing consumers both read used_at = NULL, but only one update matches;
// the loser gets ErrNotFound and its transaction rolls back.
func (r *TokenRepository) Consume(ctx context.Context, id string, at time.Time) error {
	stmt, args, err := r.builder.Update("verification_tokens").
		Set("used_at", at).
		Where(squirrel.Eq{"id": id}).
		Where("used_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build consume verification token sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("consume verification token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
