// Package password implements the hash-and-verify capability for local
// credentials on top of bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/authkeeper/internal/model"
)

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt hashes and verifies passwords with bcrypt. Comparison is
// constant-time inside the bcrypt primitive.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a hasher with the given cost; values below the bcrypt
// minimum fall back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (b *Bcrypt) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return model.ErrInvalidCredential
	}
	if err != nil {
		// Malformed or empty stored hash (federated-only accounts) is
		// indistinguishable from a wrong password to the caller.
		return model.ErrInvalidCredential
	}
	return nil
}
