package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/validation"
)

// dummyHash keeps the password-verify cost constant when the user does not
// exist, so sign-in misses and mismatches are not distinguishable by timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Session is the result of any successful sign-in path: a token pair and the
// public view of the signed-in user.
type Session struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"-"`
	User         model.UserView `json:"user"`
}

// SignUpInput carries the sign-up payload.
type SignUpInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// SignInLimiter throttles repeated credential failures. Recording and
// resetting are best-effort and never fail a sign-in.
type SignInLimiter interface {
	CheckSignIn(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string)
	ResetSignIn(ctx context.Context, email, ip string)
}

// Auth orchestrates the sign-up, sign-in, refresh, sign-out and federated
// sign-in flows. It holds no mutable state; all coordination is pushed to
// the stores.
type Auth struct {
	userStore    model.UserStore
	linkStore    model.ProviderLinkStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	avatars      *AvatarMirror
	limiter      SignInLimiter
	logger       *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	linkStore model.ProviderLinkStore,
	hasher model.PasswordHasher,
	tokenService *TokenService,
	avatars *AvatarMirror,
	limiter SignInLimiter,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		linkStore:    linkStore,
		hasher:       hasher,
		tokenService: tokenService,
		avatars:      avatars,
		limiter:      limiter,
		logger:       logger,
	}
}

// SignUp registers a local-credential user and signs it in.
func (a *Auth) SignUp(ctx context.Context, input SignUpInput) (Session, error) {
	if err := validation.SignUpInput(input.Name, input.Username, input.Email, input.Password); err != nil {
		return Session{}, err
	}

	email := validation.NormalizeEmail(input.Email)
	username := validation.NormalizeUsername(input.Username)

	if _, err := a.userStore.GetByEmail(ctx, email); err == nil {
		a.logger.Info("Auth service: sign-up for existing email", "email", email)
		return Session{}, model.NewErrEmailTaken(email)
	} else if !errors.Is(err, model.ErrNotFound) {
		return Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if _, err := a.userStore.GetByUsername(ctx, username); err == nil {
		return Session{}, model.NewErrUsernameTaken(username)
	} else if !errors.Is(err, model.ErrNotFound) {
		return Session{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	hash, err := a.hasher.Hash(input.Password)
	if err != nil {
		return Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	// The uniqueness pre-checks above only shape the error message; the
	// store's unique constraints close the race inside createUser.
	user, err := a.createUser(ctx, input.Name, username, email, hash, "", model.CredentialLocal())
	if err != nil {
		return Session{}, err
	}

	a.logger.Info("Auth service: user signed up",
		"user_id", user.ID,
		"username", user.Username)

	return a.openSession(ctx, user)
}

// SignIn verifies a local credential and issues a session.
func (a *Auth) SignIn(ctx context.Context, email, password, clientIP string) (Session, error) {
	if err := validation.SignInInput(email, password); err != nil {
		return Session{}, err
	}

	email = validation.NormalizeEmail(email)

	if a.limiter != nil {
		if err := a.limiter.CheckSignIn(ctx, email, clientIP); err != nil {
			return Session{}, err
		}
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		// Burn a compare so the miss costs the same as a mismatch.
		_ = a.hasher.Compare(dummyHash, password)
		a.recordSignInFailure(ctx, email, clientIP)
		return Session{}, model.NewErrUserNotFound()
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		a.logger.Info("Auth service: password mismatch", "user_id", user.ID)
		a.recordSignInFailure(ctx, email, clientIP)
		return Session{}, model.ErrInvalidCredential
	}

	if a.limiter != nil {
		a.limiter.ResetSignIn(ctx, email, clientIP)
	}

	a.logger.Info("Auth service: user signed in", "user_id", user.ID)

	return a.openSession(ctx, user)
}

func (a *Auth) recordSignInFailure(ctx context.Context, email, clientIP string) {
	if a.limiter != nil {
		a.limiter.RecordFailure(ctx, email, clientIP)
	}
}

// Refresh rotates the presented refresh token and issues a new session for
// the token's owner. Any failure means the caller must re-authenticate.
func (a *Auth) Refresh(ctx context.Context, presented string) (Session, error) {
	userID, access, refresh, err := a.tokenService.Rotate(ctx, presented)
	if err != nil {
		return Session{}, err
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return Session{}, model.ErrInvalidRefreshToken
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return Session{AccessToken: access, RefreshToken: refresh, User: user.View()}, nil
}

// SignOut revokes the presented refresh token. An absent or already revoked
// token is treated as already signed out.
func (a *Auth) SignOut(ctx context.Context, presented string) error {
	if presented == "" {
		return nil
	}
	return a.tokenService.Revoke(ctx, presented)
}

// SignOutEverywhere revokes every refresh token of the presented token's
// owner. Succeeds with nothing to do when no usable token is presented.
func (a *Auth) SignOutEverywhere(ctx context.Context, presented string) error {
	if presented == "" {
		return nil
	}

	userID, err := a.tokenService.ResolveOwner(ctx, presented)
	if err != nil {
		return nil
	}

	a.logger.Info("Auth service: revoking all sessions", "user_id", userID)

	return a.tokenService.RevokeAllForUser(ctx, userID)
}

// FederatedSignIn resolves or creates the local user for an externally
// verified profile and issues a session. No password check: the credential
// was already proven by the provider.
func (a *Auth) FederatedSignIn(ctx context.Context, profile model.FederatedProfile) (Session, error) {
	email := validation.NormalizeEmail(profile.Email)
	if email == "" {
		return Session{}, model.NewErrValidation("email", "provider profile has no email")
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, model.ErrNotFound):
		user, err = a.createFederatedUser(ctx, profile, email)
		if err != nil {
			return Session{}, err
		}
	case err != nil:
		return Session{}, fmt.Errorf("failed to get user by email: %w", err)
	default:
		if err := a.ensureProviderLink(ctx, user.ID, profile); err != nil {
			return Session{}, err
		}
	}

	a.logger.Info("Auth service: federated sign-in",
		"user_id", user.ID,
		"provider", profile.Provider)

	return a.openSession(ctx, user)
}

// Me returns the public view of the user behind a verified access token.
func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (model.UserView, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.UserView{}, model.ErrNotFound
		}
		return model.UserView{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user.View(), nil
}

func (a *Auth) openSession(ctx context.Context, user model.User) (Session, error) {
	access, refresh, err := a.tokenService.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return Session{AccessToken: access, RefreshToken: refresh, User: user.View()}, nil
}

func (a *Auth) createFederatedUser(ctx context.Context, profile model.FederatedProfile, email string) (model.User, error) {
	username, err := GenerateUniqueUsername(ctx, a.userStore, profile.Name, email)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to generate username: %w", err)
	}

	image := profile.Picture
	userID := uuid.New()
	if a.avatars != nil && profile.Picture != "" {
		if mirrored, err := a.avatars.Mirror(ctx, userID, profile.Picture); err != nil {
			a.logger.Error("Auth service: avatar mirror failed, keeping remote URL",
				"user_id", userID,
				"error", err.Error())
		} else {
			image = mirrored
		}
	}

	// Empty password hash is the federated-only sentinel: it never verifies.
	return a.createUserWithID(ctx, userID, profile.Name, username, email, "", image,
		model.CredentialFederated(profile.Provider, profile.ID))
}

func (a *Auth) ensureProviderLink(ctx context.Context, userID uuid.UUID, profile model.FederatedProfile) error {
	_, err := a.linkStore.GetByUser(ctx, userID, profile.Provider)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to get provider link: %w", err)
	}

	if err := a.linkStore.Create(ctx, model.ProviderLink{
		ID:                uuid.New(),
		UserID:            userID,
		Provider:          profile.Provider,
		ProviderAccountID: profile.ID,
	}); err != nil {
		return fmt.Errorf("failed to link provider: %w", err)
	}

	a.logger.Info("Auth service: linked provider to existing user",
		"user_id", userID,
		"provider", profile.Provider)

	return nil
}

func (a *Auth) createUser(ctx context.Context, name, username, email, passwordHash, image string, src model.CredentialSource) (model.User, error) {
	return a.createUserWithID(ctx, uuid.New(), name, username, email, passwordHash, image, src)
}

// createUserWithID is the single user-creation routine for both credential
// sources.
func (a *Auth) createUserWithID(ctx context.Context, id uuid.UUID, name, username, email, passwordHash, image string, src model.CredentialSource) (model.User, error) {
	now := time.Now()
	user := model.User{
		ID:           id,
		Email:        email,
		Username:     username,
		Name:         name,
		PasswordHash: passwordHash,
		Image:        image,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := a.userStore.Create(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	if src.Federated() {
		if err := a.linkStore.Create(ctx, model.ProviderLink{
			ID:                uuid.New(),
			UserID:            saved.ID,
			Provider:          src.Provider,
			ProviderAccountID: src.ProviderAccountID,
		}); err != nil {
			return model.User{}, fmt.Errorf("failed to link provider: %w", err)
		}
	}

	return saved, nil
}
