package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestInMemoryManager(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()

	require.NoError(t, m.RunMigrations(ctx))

	repo := m.Accounts()
	created, err := repo.Create(ctx, &models.Account{Email: "alice@x.io", PasswordHash: "h"})
	require.NoError(t, err)

	// the same repository is returned on every call
	got, err := m.Accounts().FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)

	require.NoError(t, m.Close(ctx))
}

func TestMongoManager(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("accounts", func(mt *mtest.T) {
		m := NewMongoRepositoryManager(mt.DB)
		_, ok := m.Accounts().(*accounts.MongoRepository)
		assert.True(mt, ok)
	})

	mt.Run("run migrations creates indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		m := NewMongoRepositoryManager(mt.DB)
		require.NoError(mt, m.RunMigrations(context.Background()))
	})

	mt.Run("run migrations error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 8, Name: "UnknownError", Message: "boom"}))

		m := NewMongoRepositoryManager(mt.DB)
		assert.Error(mt, m.RunMigrations(context.Background()))
	})
}

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.StoreDriverMemory}

	m, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := m.(*InMemoryRepositoryManager)
	assert.True(t, ok)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{StoreDriver: "cassandra"}

	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}

func TestOpen_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	orig := sqlOpen
	defer func() { sqlOpen = orig }()

	var gotDriver, gotDSN string
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return db, nil
	}

	mock.ExpectPing()

	cfg := &config.Config{StoreDriver: config.StoreDriverPostgres, DatabaseDSN: "postgres://x"}
	m, err := Open(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, "postgres://x", gotDSN)
	_, ok := m.(*PostgresRepositoryManager)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_PostgresPingFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	orig := sqlOpen
	defer func() { sqlOpen = orig }()
	sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	_, err = Open(context.Background(), &config.Config{StoreDriver: config.StoreDriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_PostgresOpenFails(t *testing.T) {
	orig := sqlOpen
	defer func() { sqlOpen = orig }()
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("bad driver") }

	_, err := Open(context.Background(), &config.Config{StoreDriver: config.StoreDriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open postgres")
}

func TestOpen_MongoConnectFails(t *testing.T) {
	orig := mongoConnect
	defer func() { mongoConnect = orig }()
	mongoConnect = func(context.Context, string) (*mongo.Client, error) {
		return nil, errors.New("bad uri")
	}

	_, err := Open(context.Background(), &config.Config{StoreDriver: config.StoreDriverMongo, MongoURI: "mongodb://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect mongo")
}
