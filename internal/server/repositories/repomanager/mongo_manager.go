package repomanager

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepositoryManager vends MongoDB-backed repositories. Its migration
// step creates the indexes the repositories rely on.
type MongoRepositoryManager struct {
	db       *mongo.Database
	accounts *accounts.MongoRepository
}

func NewMongoRepositoryManager(db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		db:       db,
		accounts: accounts.NewMongoRepository(db.Collection(accounts.CollectionName)),
	}
}

func (m *MongoRepositoryManager) Accounts() accounts.Repository {
	return m.accounts
}

func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	return m.accounts.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.db.Client().Disconnect(ctx)
}
