package services

import (
	"context"
	"fmt"

	"stip-taxii-backend/internal/domain/models"
	"stip-taxii-backend/pkg/logger"
)

// Identity is the external identity-check result.
type Identity struct {
	ID       string
	Username string
}

// IdentityChecker is the external credential-check capability. Check
// returns (nil, nil) for unknown users or bad credentials; an error means
// the check itself could not run.
type IdentityChecker interface {
	Check(ctx context.Context, username, credential string) (*Identity, error)
}

// AuthBackend maps external authentication results to account identities.
// Bad credentials never produce an error, only a nil account.
type AuthBackend struct {
	checker IdentityChecker
	logger  *logger.Logger
}

// NewAuthBackend creates an AuthBackend over the given checker.
func NewAuthBackend(checker IdentityChecker, log *logger.Logger) *AuthBackend {
	return &AuthBackend{
		checker: checker,
		logger:  log.WithComponent("auth"),
	}
}

// Authenticate verifies username/credential. It returns (nil, nil) when the
// credentials are rejected and an error only when the check itself failed.
func (a *AuthBackend) Authenticate(ctx context.Context, username, credential string) (*models.Account, error) {
	identity, err := a.checker.Check(ctx, username, credential)
	if err != nil {
		return nil, fmt.Errorf("identity check failed: %w", err)
	}
	if identity == nil {
		a.logger.Debug().Str("username", username).Msg("authentication rejected")
		return nil, nil
	}
	return &models.Account{ID: identity.ID, Username: identity.Username}, nil
}

// ResolveToken is an identity pass-through: the token in this design is the
// account itself, with no expiry or refresh.
func (a *AuthBackend) ResolveToken(account *models.Account) *models.Account {
	return account
}
