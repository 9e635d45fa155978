package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a stored user identity record. PasswordHash is empty for
// accounts created through a federated provider.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	Name         string
	PasswordHash string
	Image        string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// RoleUser is the default role assigned on account creation.
const RoleUser = "user"

// CredentialSource tells the user-creation path how the account was proven.
// A zero value means a local password credential.
type CredentialSource struct {
	Provider          string
	ProviderAccountID string
}

// CredentialLocal marks a password-backed account.
func CredentialLocal() CredentialSource {
	return CredentialSource{}
}

// CredentialFederated marks an account proven by an external identity provider.
func CredentialFederated(provider, providerAccountID string) CredentialSource {
	return CredentialSource{Provider: provider, ProviderAccountID: providerAccountID}
}

// Federated reports whether the credential came from an external provider.
func (c CredentialSource) Federated() bool {
	return c.Provider != ""
}

// UserView is the public projection of a user, safe to return to callers.
type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// View returns the public projection of the user.
func (u User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Name:      u.Name,
		Image:     u.Image,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
