package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProviderLinkStore persists links between users and federated provider accounts.
type ProviderLinkStore interface {
	Create(ctx context.Context, link ProviderLink) error
	GetByUser(ctx context.Context, userID uuid.UUID, provider string) (ProviderLink, error)
}

// FederatedProfile is the externally verified identity returned by a
// provider after a successful handshake.
type FederatedProfile struct {
	Provider string
	ID       string
	Email    string
	Name     string
	Picture  string
}

// ProviderLink ties a user to an account at an external identity provider.
type ProviderLink struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Provider          string
	ProviderAccountID string
	CreatedAt         time.Time
}
