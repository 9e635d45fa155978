package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	servermocks "github.com/dtroode/authkeeper/internal/mocks"
	"github.com/dtroode/authkeeper/internal/model"
)

func TestGenerateUniqueUsername_FromName(t *testing.T) {
	ctx := context.Background()
	store := &servermocks.UserStore{}
	store.On("GetByUsername", ctx, "annohara").Return(model.User{}, model.ErrNotFound).Once()

	got, err := GenerateUniqueUsername(ctx, store, "Ann O'Hara", "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "annohara", got)
}

func TestGenerateUniqueUsername_FallsBackToEmail(t *testing.T) {
	ctx := context.Background()
	store := &servermocks.UserStore{}
	store.On("GetByUsername", ctx, "annsmith").Return(model.User{}, model.ErrNotFound).Once()

	got, err := GenerateUniqueUsername(ctx, store, "---", "Ann.Smith@x.com")
	require.NoError(t, err)
	assert.Equal(t, "annsmith", got)
}

func TestGenerateUniqueUsername_PadsShort(t *testing.T) {
	ctx := context.Background()
	store := &servermocks.UserStore{}
	store.On("GetByUsername", ctx, "userab").Return(model.User{}, model.ErrNotFound).Once()

	got, err := GenerateUniqueUsername(ctx, store, "Ab", "ab@x.com")
	require.NoError(t, err)
	assert.Equal(t, "userab", got)
}

func TestGenerateUniqueUsername_SuffixOnCollision(t *testing.T) {
	ctx := context.Background()
	store := &servermocks.UserStore{}
	store.On("GetByUsername", ctx, "ann").Return(model.User{Username: "ann"}, nil).Once()
	store.On("GetByUsername", ctx, "ann1").Return(model.User{Username: "ann1"}, nil).Once()
	store.On("GetByUsername", ctx, "ann2").Return(model.User{}, model.ErrNotFound).Once()

	got, err := GenerateUniqueUsername(ctx, store, "Ann", "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "ann2", got)
	store.AssertExpectations(t)
}

func TestGenerateUniqueUsername_TruncatesLongBase(t *testing.T) {
	ctx := context.Background()
	store := &servermocks.UserStore{}
	long := strings.Repeat("a", 60)

	store.On("GetByUsername", ctx, mock.Anything).Return(model.User{}, model.ErrNotFound).Once()

	got, err := GenerateUniqueUsername(ctx, store, long, "x@x.com")
	require.NoError(t, err)
	assert.Len(t, got, 45)
}

func TestGenerateUniqueUsername_SuffixKeepsLengthBudget(t *testing.T) {
	ctx := context.Background()
	store := &servermocks.UserStore{}
	long := strings.Repeat("a", 60)
	base := strings.Repeat("a", 45)

	store.On("GetByUsername", ctx, base).Return(model.User{Username: base}, nil).Once()
	store.On("GetByUsername", ctx, base+"1").Return(model.User{}, model.ErrNotFound).Once()

	got, err := GenerateUniqueUsername(ctx, store, long, "x@x.com")
	require.NoError(t, err)
	assert.Equal(t, base+"1", got)
	assert.LessOrEqual(t, len(got), 50)
}

func TestGenerateUniqueUsername_StoreError(t *testing.T) {
	ctx := context.Background()
	store := &servermocks.UserStore{}
	store.On("GetByUsername", ctx, mock.Anything).Return(model.User{}, assert.AnError).Once()

	_, err := GenerateUniqueUsername(ctx, store, "Ann", "ann@x.com")
	require.Error(t, err)
}
