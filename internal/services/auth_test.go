package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db)
	ctx := context.Background()

	user, err := auth.Signup(ctx, "Amina", "Amina@Example.com", "s3cretpass", "")
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", user.Email)
	assert.NotEqual(t, "s3cretpass", user.Password)

	_, err = auth.Signup(ctx, "Amina", "amina@example.com", "s3cretpass", "")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = auth.Signup(ctx, "Short", "short@example.com", "abc", "")
	assert.ErrorIs(t, err, ErrValidation)

	logged, err := auth.Login(ctx, "AMINA@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = auth.Login(ctx, "amina@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
