package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"stip-taxii-backend/internal/domain/services"
)

// AccountRepository stores API caller accounts and implements the
// identity-check capability consumed by the auth backend.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create inserts an account with a bcrypt-hashed password.
func (r *AccountRepository) Create(ctx context.Context, username, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO accounts (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, id, username, string(hash), time.Now()); err != nil {
		return "", fmt.Errorf("failed to create account %q: %w", username, err)
	}
	return id.String(), nil
}

// Check verifies username/credential against the stored hash. Unknown
// users and wrong credentials both yield (nil, nil); only a store failure
// is an error.
func (r *AccountRepository) Check(ctx context.Context, username, credential string) (*services.Identity, error) {
	query := `SELECT id, username, password_hash FROM accounts WHERE username = $1`

	var (
		id   uuid.UUID
		name string
		hash string
	)
	err := r.pool.QueryRow(ctx, query, username).Scan(&id, &name, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up account %q: %w", username, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)) != nil {
		return nil, nil
	}
	return &services.Identity{ID: id.String(), Username: name}, nil
}
