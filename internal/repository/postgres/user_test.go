package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authkeeper/internal/model"
)

func TestNewUserRepository(t *testing.T) {
	db := &Connection{}
	repo := NewUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestMapUniqueViolation(t *testing.T) {
	require.Nil(t, mapUniqueViolation(assert.AnError))

	emailErr := mapUniqueViolation(pgUniqueError("users_email_key"))
	var apiErr *model.APIError
	require.ErrorAs(t, emailErr, &apiErr)
	assert.Equal(t, "email", apiErr.Field)

	usernameErr := mapUniqueViolation(pgUniqueError("users_username_key"))
	require.ErrorAs(t, usernameErr, &apiErr)
	assert.Equal(t, "username", apiErr.Field)
}
