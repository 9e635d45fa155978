package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	servermocks "github.com/dtroode/authkeeper/internal/mocks"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/testutil"
)

type authFixture struct {
	userStore *servermocks.UserStore
	linkStore *servermocks.ProviderLinkStore
	hasher    *servermocks.PasswordHasher
	manager   *servermocks.TokenManager
	tokens    *servermocks.RefreshTokenStore
	auth      *Auth
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		userStore: &servermocks.UserStore{},
		linkStore: &servermocks.ProviderLinkStore{},
		hasher:    &servermocks.PasswordHasher{},
		manager:   &servermocks.TokenManager{},
		tokens:    &servermocks.RefreshTokenStore{},
	}
	log := testutil.MakeNoopLogger()
	f.auth = NewAuth(f.userStore, f.linkStore, f.hasher,
		NewTokenService(f.manager, f.tokens, log), nil, nil, log)
	return f
}

func (f *authFixture) expectIssue(userID uuid.UUID, email string) {
	f.manager.On("GenerateAccessToken", userID, email).Return("access", nil).Once()
	f.manager.On("GenerateRefreshToken", userID, email).Return("refresh", nil).Once()
	f.manager.On("RefreshTTL").Return(time.Hour)
	f.tokens.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
}

func TestAuth_SignUp_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{}, model.ErrNotFound).Once()
	f.userStore.On("GetByUsername", ctx, "ann1").Return(model.User{}, model.ErrNotFound).Once()
	f.hasher.On("Hash", "Abc12345").Return("hashed", nil).Once()

	var createdID uuid.UUID
	f.userStore.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
		createdID = u.ID
		return u.Email == "ann@x.com" && u.Username == "ann1" &&
			u.PasswordHash == "hashed" && u.Role == model.RoleUser
	})).Return(func(_ context.Context, u model.User) (model.User, error) {
		return u, nil
	}).Once()

	f.manager.On("GenerateAccessToken", mock.Anything, "ann@x.com").Return("access", nil).Once()
	f.manager.On("GenerateRefreshToken", mock.Anything, "ann@x.com").Return("refresh", nil).Once()
	f.manager.On("RefreshTTL").Return(time.Hour)
	f.tokens.On("Create", ctx, mock.Anything).Return(nil).Once()

	session, err := f.auth.SignUp(ctx, SignUpInput{
		Name:     "Ann",
		Username: "Ann1",
		Email:    " Ann@X.com ",
		Password: "Abc12345",
	})
	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, "refresh", session.RefreshToken)
	assert.Equal(t, "ann1", session.User.Username)
	assert.Equal(t, createdID, session.User.ID)
	f.userStore.AssertExpectations(t)
}

func TestAuth_SignUp_InvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	_, err := f.auth.SignUp(ctx, SignUpInput{
		Name:     "Ann",
		Username: "ann1",
		Email:    "not-an-email",
		Password: "Abc12345",
	})
	require.Error(t, err)

	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "email", apiErr.Field)
	f.userStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_SignUp_EmailTaken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{ID: uuid.New()}, nil).Once()

	_, err := f.auth.SignUp(ctx, SignUpInput{
		Name:     "Ann",
		Username: "ann1",
		Email:    "ann@x.com",
		Password: "Abc12345",
	})
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "email", apiErr.Field)
}

func TestAuth_SignUp_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{}, model.ErrNotFound).Once()
	f.userStore.On("GetByUsername", ctx, "ann1").Return(model.User{ID: uuid.New()}, nil).Once()

	_, err := f.auth.SignUp(ctx, SignUpInput{
		Name:     "Ann",
		Username: "ann1",
		Email:    "ann@x.com",
		Password: "Abc12345",
	})
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "username", apiErr.Field)
}

func TestAuth_SignIn_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{
		ID:           userID,
		Email:        "ann@x.com",
		Username:     "ann1",
		PasswordHash: "hashed",
	}, nil).Once()
	f.hasher.On("Compare", "hashed", "Abc12345").Return(nil).Once()
	f.expectIssue(userID, "ann@x.com")

	session, err := f.auth.SignIn(ctx, "Ann@X.com", "Abc12345", "")
	require.NoError(t, err)
	assert.Equal(t, userID, session.User.ID)
	assert.Equal(t, "access", session.AccessToken)
}

func TestAuth_SignIn_UserMissing(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("GetByEmail", ctx, "ghost@x.com").Return(model.User{}, model.ErrNotFound).Once()
	// The dummy compare still runs so a miss costs the same as a mismatch.
	f.hasher.On("Compare", mock.Anything, "Abc12345").Return(model.ErrInvalidCredential).Once()

	_, err := f.auth.SignIn(ctx, "ghost@x.com", "Abc12345", "")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	f.hasher.AssertExpectations(t)
}

func TestAuth_SignIn_WrongPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{
		ID:           uuid.New(),
		PasswordHash: "hashed",
	}, nil).Once()
	f.hasher.On("Compare", "hashed", "wrong").Return(model.ErrInvalidCredential).Once()

	_, err := f.auth.SignIn(ctx, "ann@x.com", "wrong", "")
	require.ErrorIs(t, err, model.ErrInvalidCredential)
	f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_SignIn_FederatedOnlyAccount(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	// Empty hash sentinel never verifies, so a password sign-in against a
	// federated-only account fails as an invalid credential.
	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{
		ID:           uuid.New(),
		PasswordHash: "",
	}, nil).Once()
	f.hasher.On("Compare", "", "Abc12345").Return(model.ErrInvalidCredential).Once()

	_, err := f.auth.SignIn(ctx, "ann@x.com", "Abc12345", "")
	require.ErrorIs(t, err, model.ErrInvalidCredential)
}

func TestAuth_SignIn_RateLimited(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	lim := &servermocks.SignInLimiter{}
	f.auth.limiter = lim

	lim.On("CheckSignIn", ctx, "ann@x.com", "10.0.0.1").Return(model.ErrRateLimited).Once()

	_, err := f.auth.SignIn(ctx, "ann@x.com", "Abc12345", "10.0.0.1")
	require.ErrorIs(t, err, model.ErrRateLimited)
	f.userStore.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuth_SignIn_FailureRecordedAndReset(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	lim := &servermocks.SignInLimiter{}
	f.auth.limiter = lim
	userID := uuid.New()

	lim.On("CheckSignIn", ctx, "ann@x.com", "10.0.0.1").Return(nil).Twice()
	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{
		ID:           userID,
		Email:        "ann@x.com",
		PasswordHash: "hashed",
	}, nil).Twice()

	f.hasher.On("Compare", "hashed", "wrong").Return(model.ErrInvalidCredential).Once()
	lim.On("RecordFailure", ctx, "ann@x.com", "10.0.0.1").Once()

	_, err := f.auth.SignIn(ctx, "ann@x.com", "wrong", "10.0.0.1")
	require.ErrorIs(t, err, model.ErrInvalidCredential)

	f.hasher.On("Compare", "hashed", "Abc12345").Return(nil).Once()
	lim.On("ResetSignIn", ctx, "ann@x.com", "10.0.0.1").Once()
	f.expectIssue(userID, "ann@x.com")

	_, err = f.auth.SignIn(ctx, "ann@x.com", "Abc12345", "10.0.0.1")
	require.NoError(t, err)
	lim.AssertExpectations(t)
}

func TestAuth_Refresh_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.manager.On("ParseRefreshToken", "old").Return(model.TokenClaims{
		UserID: userID,
		Email:  "ann@x.com",
		Kind:   model.TokenKindRefresh,
	}, nil).Once()
	f.manager.On("GenerateRefreshToken", userID, "ann@x.com").Return("new-refresh", nil).Once()
	f.manager.On("RefreshTTL").Return(time.Hour)
	f.tokens.On("Rotate", ctx, mock.Anything, mock.Anything).Return(userID, nil).Once()
	f.manager.On("GenerateAccessToken", userID, "ann@x.com").Return("new-access", nil).Once()
	f.userStore.On("GetByID", ctx, userID).Return(model.User{ID: userID, Email: "ann@x.com"}, nil).Once()

	session, err := f.auth.Refresh(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "new-access", session.AccessToken)
	assert.Equal(t, "new-refresh", session.RefreshToken)
}

func TestAuth_Refresh_Invalid(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.manager.On("ParseRefreshToken", "bad").Return(model.TokenClaims{}, model.ErrTokenExpired).Once()

	_, err := f.auth.Refresh(ctx, "bad")
	require.ErrorIs(t, err, model.ErrInvalidRefreshToken)
}

func TestAuth_Refresh_UserGone(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.manager.On("ParseRefreshToken", "old").Return(model.TokenClaims{
		UserID: userID,
		Email:  "ann@x.com",
		Kind:   model.TokenKindRefresh,
	}, nil).Once()
	f.manager.On("GenerateRefreshToken", userID, "ann@x.com").Return("new-refresh", nil).Once()
	f.manager.On("RefreshTTL").Return(time.Hour)
	f.tokens.On("Rotate", ctx, mock.Anything, mock.Anything).Return(userID, nil).Once()
	f.manager.On("GenerateAccessToken", userID, "ann@x.com").Return("new-access", nil).Once()
	f.userStore.On("GetByID", ctx, userID).Return(model.User{}, model.ErrNotFound).Once()

	_, err := f.auth.Refresh(ctx, "old")
	require.ErrorIs(t, err, model.ErrInvalidRefreshToken)
}

func TestAuth_SignOut(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	// Absent token is already-signed-out, not an error.
	require.NoError(t, f.auth.SignOut(ctx, ""))
	f.tokens.AssertNotCalled(t, "DeleteByHash", mock.Anything, mock.Anything)

	f.tokens.On("DeleteByHash", ctx, mock.Anything).Return(nil).Once()
	require.NoError(t, f.auth.SignOut(ctx, "some-refresh"))
	f.tokens.AssertExpectations(t)
}

func TestAuth_SignOutEverywhere(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	require.NoError(t, f.auth.SignOutEverywhere(ctx, ""))

	f.manager.On("ParseRefreshToken", "unparsable").Return(model.TokenClaims{}, model.ErrTokenInvalid).Once()
	require.NoError(t, f.auth.SignOutEverywhere(ctx, "unparsable"))
	f.tokens.AssertNotCalled(t, "DeleteAllByUser", mock.Anything, mock.Anything)

	f.manager.On("ParseRefreshToken", "mine").Return(model.TokenClaims{
		UserID: userID,
		Kind:   model.TokenKindRefresh,
	}, nil).Once()
	f.tokens.On("DeleteAllByUser", ctx, userID).Return(nil).Once()
	require.NoError(t, f.auth.SignOutEverywhere(ctx, "mine"))
	f.tokens.AssertExpectations(t)
}

func TestAuth_FederatedSignIn_NewUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{}, model.ErrNotFound).Once()
	// Username generation probes for a free candidate.
	f.userStore.On("GetByUsername", ctx, "ann").Return(model.User{}, model.ErrNotFound).Once()

	f.userStore.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "ann@x.com" && u.Username == "ann" && u.PasswordHash == ""
	})).Return(func(_ context.Context, u model.User) (model.User, error) {
		return u, nil
	}).Once()
	f.linkStore.On("Create", ctx, mock.MatchedBy(func(l model.ProviderLink) bool {
		return l.Provider == "google" && l.ProviderAccountID == "g-123"
	})).Return(nil).Once()

	f.manager.On("GenerateAccessToken", mock.Anything, "ann@x.com").Return("access", nil).Once()
	f.manager.On("GenerateRefreshToken", mock.Anything, "ann@x.com").Return("refresh", nil).Once()
	f.manager.On("RefreshTTL").Return(time.Hour)
	f.tokens.On("Create", ctx, mock.Anything).Return(nil).Once()

	session, err := f.auth.FederatedSignIn(ctx, model.FederatedProfile{
		Provider: "google",
		ID:       "g-123",
		Email:    "Ann@X.com",
		Name:     "Ann",
	})
	require.NoError(t, err)
	assert.Equal(t, "ann", session.User.Username)
	f.linkStore.AssertExpectations(t)
}

func TestAuth_FederatedSignIn_LinksExistingUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{
		ID:    userID,
		Email: "ann@x.com",
	}, nil).Once()
	f.linkStore.On("GetByUser", ctx, userID, "google").Return(model.ProviderLink{}, model.ErrNotFound).Once()
	f.linkStore.On("Create", ctx, mock.MatchedBy(func(l model.ProviderLink) bool {
		return l.UserID == userID && l.Provider == "google"
	})).Return(nil).Once()
	f.expectIssue(userID, "ann@x.com")

	_, err := f.auth.FederatedSignIn(ctx, model.FederatedProfile{
		Provider: "google",
		ID:       "g-123",
		Email:    "ann@x.com",
		Name:     "Ann",
	})
	require.NoError(t, err)
	f.linkStore.AssertExpectations(t)
}

func TestAuth_FederatedSignIn_AlreadyLinked(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.userStore.On("GetByEmail", ctx, "ann@x.com").Return(model.User{
		ID:    userID,
		Email: "ann@x.com",
	}, nil).Once()
	f.linkStore.On("GetByUser", ctx, userID, "google").Return(model.ProviderLink{
		UserID:   userID,
		Provider: "google",
	}, nil).Once()
	f.expectIssue(userID, "ann@x.com")

	_, err := f.auth.FederatedSignIn(ctx, model.FederatedProfile{
		Provider: "google",
		ID:       "g-123",
		Email:    "ann@x.com",
		Name:     "Ann",
	})
	require.NoError(t, err)
	f.linkStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_Me(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	f.userStore.On("GetByID", ctx, userID).Return(model.User{
		ID:       userID,
		Email:    "ann@x.com",
		Username: "ann1",
	}, nil).Once()

	view, err := f.auth.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "ann1", view.Username)

	gone := uuid.New()
	f.userStore.On("GetByID", ctx, gone).Return(model.User{}, model.ErrNotFound).Once()
	_, err = f.auth.Me(ctx, gone)
	require.ErrorIs(t, err, model.ErrNotFound)
}
