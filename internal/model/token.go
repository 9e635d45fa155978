package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind discriminates access tokens from refresh tokens inside claims,
// so a verified token of the wrong kind is never accepted.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the payload carried by both token kinds.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
	Kind   TokenKind
}

// TokenManager encodes and verifies signed, time-bound tokens. Access and
// refresh tokens use independent secrets and TTLs and are never interchangeable.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
	GenerateRefreshToken(userID uuid.UUID, email string) (string, error)
	ParseAccessToken(token string) (TokenClaims, error)
	ParseRefreshToken(token string) (TokenClaims, error)
	RefreshTTL() time.Duration
}
