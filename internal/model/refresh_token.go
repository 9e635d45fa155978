package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists refresh-token records. Records are keyed by the
// SHA-256 digest of the token string; raw tokens are never stored.
//
// Rotate must be atomic with respect to concurrent calls on the same old
// digest: of two racing rotations exactly one wins, the other observes
// ErrNotFound. Expired records are invisible to every method.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByHash(ctx context.Context, tokenHash []byte) (RefreshToken, error)
	Rotate(ctx context.Context, oldTokenHash []byte, newToken RefreshToken) (userID uuid.UUID, err error)
	DeleteByHash(ctx context.Context, tokenHash []byte) error
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// RefreshToken represents one live rotation unit owned by a user.
type RefreshToken struct {
	TokenHash []byte
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}
