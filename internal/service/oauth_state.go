package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

// StateManager issues and consumes the single-use nonces that protect the
// federated-login handshake against replay and CSRF.
type StateManager struct {
	secret string
	store  model.OAuthStateStore
	logger *logger.Logger
}

func NewStateManager(secret string, store model.OAuthStateStore, logger *logger.Logger) *StateManager {
	return &StateManager{secret: secret, store: store, logger: logger}
}

// Create issues a short-lived signed state nonce and persists it.
func (m *StateManager) Create(ctx context.Context, provider string) (string, error) {
	now := time.Now()
	expiresAt := now.Add(model.StateTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"provider": provider,
		"iat":      jwt.NewNumericDate(now),
		"exp":      jwt.NewNumericDate(expiresAt),
	})
	state, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}

	if err := m.store.Create(ctx, model.OAuthState{
		State:     state,
		Provider:  provider,
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", fmt.Errorf("failed to persist state: %w", err)
	}

	return state, nil
}

// ValidateAndConsume fails closed: it returns true only when a live record
// for (state, provider) existed, and deletes it before returning, so a
// replayed state always validates false.
func (m *StateManager) ValidateAndConsume(ctx context.Context, state, provider string) bool {
	ok, err := m.store.Consume(ctx, state, provider)
	if err != nil {
		m.logger.Error("State manager: failed to consume state",
			"provider", provider,
			"error", err.Error())
		return false
	}
	return ok
}

// SweepExpired deletes expired, unconsumed states.
func (m *StateManager) SweepExpired(ctx context.Context) error {
	n, err := m.store.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep oauth states: %w", err)
	}
	if n > 0 {
		m.logger.Debug("State manager: swept expired states", "count", n)
	}
	return nil
}
