package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/repository"
)

func newTokenMock(t *testing.T) (pgxmock.PgxPoolIface, *TokenRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock, NewTokenRepository(mock)
}

func TestTokenRepository_Upsert(t *testing.T) {
	mock, repo := newTokenMock(t)

	now := time.Now().UTC()
	token := domain.VerificationToken{
		ID:        "token-1",
		AccountID: "account-1",
		Purpose:   domain.TokenPurposeAccountVerification,
		ValueHash: "abc123",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}

	mock.ExpectExec(`INSERT INTO verification_tokens .* ON CONFLICT \(account_id, purpose\) DO UPDATE SET\s+id = EXCLUDED\.id`).
		WithArgs(
			token.ID,
			token.AccountID,
			token.Purpose,
			token.ValueHash,
			token.CreatedAt,
			token.ExpiresAt,
			token.UsedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), token); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_GetByHash(t *testing.T) {
	mock, repo := newTokenMock(t)

	now := time.Now().UTC()
	usedAt := now.Add(time.Minute)

	rows := pgxmock.NewRows([]string{
		"id", "account_id", "purpose", "value_hash", "created_at", "expires_at", "used_at",
	}).AddRow(
		"token-1", "account-1", domain.TokenPurposePasswordReset, "abc123", now, now.Add(2*time.Hour), usedAt,
	)

	mock.ExpectQuery(`SELECT .* FROM verification_tokens`).
		WithArgs("abc123").
		WillReturnRows(rows)

	token, err := repo.GetByHash(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetByHash returned error: %v", err)
	}
	if token.ID != "token-1" {
		t.Fatalf("expected token-1, got %s", token.ID)
	}
	if token.UsedAt == nil || !token.UsedAt.Equal(usedAt) {
		t.Fatalf("expected used_at %v, got %v", usedAt, token.UsedAt)
	}
}

func TestTokenRepository_GetByHashNotFound(t *testing.T) {
	mock, repo := newTokenMock(t)

	mock.ExpectQuery(`SELECT .* FROM verification_tokens`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "account_id", "purpose", "value_hash", "created_at", "expires_at", "used_at",
		}))

	_, err := repo.GetByHash(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepository_ConsumeGuard(t *testing.T) {
	mock, repo := newTokenMock(t)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE verification_tokens SET used_at`).
		WithArgs(at, "token-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.Consume(context.Background(), "token-1", at); err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}

	// A second consume matches no rows: used_at is no longer NULL.
	mock.ExpectExec(`UPDATE verification_tokens SET used_at`).
		WithArgs(at, "token-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Consume(context.Background(), "token-1", at)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on consumed token, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
