package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

// TokenService is the refresh-token ledger: it owns the relationship between
// a user and its live refresh tokens and enforces single-use rotation. It
// composes the TokenManager and RefreshTokenStore.
type TokenService struct {
	manager model.TokenManager
	store   model.RefreshTokenStore
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, store model.RefreshTokenStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, store: store, logger: logger}
}

// Issue generates an access/refresh pair for the user and persists the
// refresh record. The record is written in a single insert: either the token
// ends up fully stored or not at all.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, email string) (accessToken string, refreshToken string, err error) {
	access, err := s.manager.GenerateAccessToken(userID, email)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(userID, email)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh: %w", err)
	}

	rt := model.RefreshToken{
		TokenHash: hashRefresh(refresh),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.manager.RefreshTTL()),
	}
	if err := s.store.Create(ctx, rt); err != nil {
		return "", "", fmt.Errorf("persist refresh: %w", err)
	}

	return access, refresh, nil
}

// Rotate consumes the presented refresh token and issues a replacement pair
// bound to the record's owning user. The delete-old/insert-new step runs as
// one store transaction, so of two concurrent rotations of the same token
// exactly one succeeds; the loser gets ErrInvalidRefreshToken.
func (s *TokenService) Rotate(ctx context.Context, presented string) (userID uuid.UUID, accessToken string, refreshToken string, err error) {
	claims, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		s.logger.Debug("Token service: presented refresh token rejected by codec",
			"error", err.Error())
		return uuid.Nil, "", "", model.ErrInvalidRefreshToken
	}

	refresh, err := s.manager.GenerateRefreshToken(claims.UserID, claims.Email)
	if err != nil {
		return uuid.Nil, "", "", fmt.Errorf("issue new refresh: %w", err)
	}

	newRT := model.RefreshToken{
		TokenHash: hashRefresh(refresh),
		UserID:    claims.UserID,
		ExpiresAt: time.Now().Add(s.manager.RefreshTTL()),
	}

	ownerID, err := s.store.Rotate(ctx, hashRefresh(presented), newRT)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Info("Token service: rotation lost or token already consumed",
				"user_id", claims.UserID)
			return uuid.Nil, "", "", model.ErrInvalidRefreshToken
		}
		return uuid.Nil, "", "", fmt.Errorf("rotate refresh: %w", err)
	}

	access, err := s.manager.GenerateAccessToken(ownerID, claims.Email)
	if err != nil {
		return uuid.Nil, "", "", fmt.Errorf("issue new access: %w", err)
	}

	return ownerID, access, refresh, nil
}

// Revoke deletes the record for the presented token. Unknown and already
// revoked tokens are not an error.
func (s *TokenService) Revoke(ctx context.Context, presented string) error {
	if err := s.store.DeleteByHash(ctx, hashRefresh(presented)); err != nil {
		return fmt.Errorf("revoke refresh: %w", err)
	}
	return nil
}

// RevokeAllForUser deletes every refresh token owned by the user.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all refresh: %w", err)
	}
	return nil
}

// ResolveOwner returns the user the presented refresh token was issued to,
// without touching the ledger.
func (s *TokenService) ResolveOwner(ctx context.Context, presented string) (uuid.UUID, error) {
	claims, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		return uuid.Nil, model.ErrInvalidRefreshToken
	}
	return claims.UserID, nil
}

// IsValid reports whether the presented token exists in the ledger and has
// not expired. It never rotates.
func (s *TokenService) IsValid(ctx context.Context, presented string) bool {
	_, err := s.store.GetByHash(ctx, hashRefresh(presented))
	return err == nil
}

// GetUserID resolves the user behind a bearer access token.
func (s *TokenService) GetUserID(ctx context.Context, accessToken string) (uuid.UUID, error) {
	claims, err := s.manager.ParseAccessToken(accessToken)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// SweepExpired removes expired refresh records. Absence of sweeping does not
// affect correctness, only storage growth.
func (s *TokenService) SweepExpired(ctx context.Context) error {
	n, err := s.store.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep refresh tokens: %w", err)
	}
	if n > 0 {
		s.logger.Debug("Token service: swept expired refresh tokens", "count", n)
	}
	return nil
}

func hashRefresh(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}
