package repomanager

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
)

// RepositoryManager owns the connection to one credential store backend.
type RepositoryManager interface {
	Accounts() accounts.Repository
	RunMigrations(ctx context.Context) error
	Close(ctx context.Context) error
}
