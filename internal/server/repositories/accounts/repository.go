// Package accounts declares the credential store contract and its
// PostgreSQL, MongoDB and in-memory implementations.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository persists accounts keyed by a unique email.
type Repository interface {
	// Create inserts account and returns it with ID and CreatedAt filled in.
	// A duplicate email yields common.ErrAccountExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByEmail returns common.ErrorNotFound when no account has email.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// FindByID returns common.ErrorNotFound when no account has id.
	FindByID(ctx context.Context, id string) (*models.Account, error)
}
