package postgres

import (
	"context"
	"fmt"

	"github.com/dtroode/authkeeper/internal/model"
)

var _ model.OAuthStateStore = (*OAuthStateRepository)(nil)

type OAuthStateRepository struct {
	db *Connection
}

func NewOAuthStateRepository(db *Connection) *OAuthStateRepository {
	return &OAuthStateRepository{db: db}
}

func (r *OAuthStateRepository) Create(ctx context.Context, state model.OAuthState) error {
	const query = `
        INSERT INTO oauth_states (state, provider, expires_at, created_at)
        VALUES ($1, $2, $3, NOW())
    `

	if _, err := r.db.Exec(ctx, query, state.State, state.Provider, state.ExpiresAt); err != nil {
		return mapError(fmt.Errorf("failed to create oauth state: %w", err))
	}
	return nil
}

// Consume deletes the state in a single statement. The row is the single-use
// guard: once any caller deletes it, every later attempt matches nothing.
func (r *OAuthStateRepository) Consume(ctx context.Context, state, provider string) (bool, error) {
	const query = `
        DELETE FROM oauth_states
        WHERE state = $1 AND provider = $2 AND expires_at > NOW()
    `

	tag, err := r.db.Exec(ctx, query, state, provider)
	if err != nil {
		return false, mapError(fmt.Errorf("failed to consume oauth state: %w", err))
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OAuthStateRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM oauth_states WHERE expires_at <= NOW()`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, mapError(fmt.Errorf("failed to delete expired oauth states: %w", err))
	}
	return tag.RowsAffected(), nil
}
