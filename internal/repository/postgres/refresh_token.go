package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/authkeeper/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
        VALUES ($1, $2, $3, NOW())
    `

	if _, err := r.db.Exec(ctx, query, token.TokenHash, token.UserID, token.ExpiresAt); err != nil {
		return mapError(fmt.Errorf("failed to create refresh token: %w", err))
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash []byte) (model.RefreshToken, error) {
	// Expired records are treated as absent.
	const query = `
        SELECT token_hash, user_id, expires_at, created_at
        FROM refresh_tokens WHERE token_hash = $1 AND expires_at > NOW()
    `

	var rt model.RefreshToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&rt.TokenHash, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, mapError(fmt.Errorf("failed to get refresh token: %w", err))
	}
	return rt, nil
}

// Rotate deletes the old record and inserts the replacement inside one
// transaction. The DELETE only matches a live record, so two concurrent
// rotations of the same token serialize on the row: one deletes it and
// commits, the other matches nothing and observes ErrNotFound.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldTokenHash []byte, newToken model.RefreshToken) (uuid.UUID, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, mapError(fmt.Errorf("failed to begin rotation: %w", err))
	}
	defer tx.Rollback(ctx)

	const consume = `
        DELETE FROM refresh_tokens
        WHERE token_hash = $1 AND expires_at > NOW()
        RETURNING user_id
    `
	var ownerID uuid.UUID
	if err := tx.QueryRow(ctx, consume, oldTokenHash).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, model.ErrNotFound
		}
		return uuid.Nil, mapError(fmt.Errorf("failed to consume refresh token: %w", err))
	}

	const insert = `
        INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
        VALUES ($1, $2, $3, NOW())
    `
	if _, err := tx.Exec(ctx, insert, newToken.TokenHash, ownerID, newToken.ExpiresAt); err != nil {
		return uuid.Nil, mapError(fmt.Errorf("failed to insert rotated token: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, mapError(fmt.Errorf("failed to commit rotation: %w", err))
	}

	return ownerID, nil
}

func (r *RefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash []byte) error {
	const query = `DELETE FROM refresh_tokens WHERE token_hash = $1`

	if _, err := r.db.Exec(ctx, query, tokenHash); err != nil {
		return mapError(fmt.Errorf("failed to delete refresh token: %w", err))
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `DELETE FROM refresh_tokens WHERE user_id = $1`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return mapError(fmt.Errorf("failed to delete refresh tokens by user: %w", err))
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, mapError(fmt.Errorf("failed to delete expired refresh tokens: %w", err))
	}
	return tag.RowsAffected(), nil
}
