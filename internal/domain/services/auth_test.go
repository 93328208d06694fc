package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stip-taxii-backend/pkg/logger"
)

type stubChecker struct {
	identity *Identity
	err      error
}

func (c *stubChecker) Check(ctx context.Context, username, credential string) (*Identity, error) {
	return c.identity, c.err
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthBackend(&stubChecker{
		identity: &Identity{ID: "42", Username: "user1"},
	}, logger.Nop())

	account, err := auth.Authenticate(context.Background(), "user1", "secret")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "42", account.ID)
	assert.Equal(t, "user1", account.Username)
}

func TestAuthenticateRejected(t *testing.T) {
	auth := NewAuthBackend(&stubChecker{}, logger.Nop())

	// Bad credentials are a nil account, never an error.
	account, err := auth.Authenticate(context.Background(), "user1", "wrong-credential")
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestAuthenticateCheckerFailure(t *testing.T) {
	auth := NewAuthBackend(&stubChecker{err: errors.New("directory unreachable")}, logger.Nop())

	_, err := auth.Authenticate(context.Background(), "user1", "secret")
	assert.Error(t, err)
}

func TestResolveToken(t *testing.T) {
	auth := NewAuthBackend(&stubChecker{
		identity: &Identity{ID: "1", Username: "u"},
	}, logger.Nop())

	account, err := auth.Authenticate(context.Background(), "u", "p")
	require.NoError(t, err)

	// The token is the account itself; resolution is a pass-through.
	assert.Same(t, account, auth.ResolveToken(account))
	assert.Nil(t, auth.ResolveToken(nil))
}
