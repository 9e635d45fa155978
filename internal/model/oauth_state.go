package model

import (
	"context"
	"time"
)

// StateTTL is how long a federated-handshake nonce stays valid.
const StateTTL = 10 * time.Minute

// OAuthStateStore persists single-use federated-handshake nonces.
//
// Consume must be atomic: it deletes the record and reports whether a live,
// provider-matching record existed. A second Consume with the same state
// value must return false.
type OAuthStateStore interface {
	Create(ctx context.Context, state OAuthState) error
	Consume(ctx context.Context, state, provider string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// OAuthState is a short-lived nonce protecting the federated handshake.
type OAuthState struct {
	State     string
	Provider  string
	ExpiresAt time.Time
	CreatedAt time.Time
}
