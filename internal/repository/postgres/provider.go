package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/authkeeper/internal/model"
)

var _ model.ProviderLinkStore = (*ProviderLinkRepository)(nil)

type ProviderLinkRepository struct {
	db *Connection
}

func NewProviderLinkRepository(db *Connection) *ProviderLinkRepository {
	return &ProviderLinkRepository{db: db}
}

func (r *ProviderLinkRepository) Create(ctx context.Context, link model.ProviderLink) error {
	const query = `
        INSERT INTO provider_links (id, user_id, provider, provider_account_id, created_at)
        VALUES ($1, $2, $3, $4, NOW())
    `

	if _, err := r.db.Exec(ctx, query, link.ID, link.UserID, link.Provider, link.ProviderAccountID); err != nil {
		// A concurrent callback already linked this provider; that is fine.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil
		}
		return mapError(fmt.Errorf("failed to create provider link: %w", err))
	}
	return nil
}

func (r *ProviderLinkRepository) GetByUser(ctx context.Context, userID uuid.UUID, provider string) (model.ProviderLink, error) {
	const query = `
        SELECT id, user_id, provider, provider_account_id, created_at
        FROM provider_links WHERE user_id = $1 AND provider = $2
    `

	var link model.ProviderLink
	err := r.db.QueryRow(ctx, query, userID, provider).Scan(
		&link.ID, &link.UserID, &link.Provider, &link.ProviderAccountID, &link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProviderLink{}, model.ErrNotFound
		}
		return model.ProviderLink{}, mapError(fmt.Errorf("failed to get provider link: %w", err))
	}
	return link, nil
}
