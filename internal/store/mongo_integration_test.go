//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
	"github.com/silverhyuk/david-remittance-service/internal/mongodb"
	"github.com/silverhyuk/david-remittance-service/internal/store"
	"github.com/silverhyuk/david-remittance-service/pkg/log"
)

// setupMongoClient starts a disposable MongoDB 7 container and returns a
// connected client. Container and client are torn down via t.Cleanup.
func setupMongoClient(t *testing.T) *mongodb.Client {
	t.Helper()

	ctx := context.Background()

	container, err := tcmongo.Run(ctx,
		"mongo:7",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongodb.NewClient(ctx, mongodb.Config{
		URI:      uri,
		Database: "remittance_integration_test",
		Logger:   log.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close(ctx)) })

	return client
}

func TestIntegration_MongoAccountStore_RoundTrip(t *testing.T) {
	client := setupMongoClient(t)
	ctx := context.Background()

	s, err := store.NewMongoAccountStore(ctx, client)
	require.NoError(t, err)

	account, err := domain.NewAccount("110-0000-0001", "integration holder", decimal.RequireFromString("1234.56"))
	require.NoError(t, err)

	_, err = s.Save(ctx, account)
	require.NoError(t, err)

	loaded, err := s.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.AccountNumber, loaded.AccountNumber)
	assert.Equal(t, account.AccountName, loaded.AccountName)
	assert.True(t, loaded.Balance.Equal(account.Balance), "balance survives the string round trip exactly")
	assert.Equal(t, domain.AccountStatusActive, loaded.Status)

	byNumber, err := s.FindByAccountNumber(ctx, "110-0000-0001")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byNumber.ID)

	_, err = s.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIntegration_MongoAccountStore_SaveIsUpsert(t *testing.T) {
	client := setupMongoClient(t)
	ctx := context.Background()

	s, err := store.NewMongoAccountStore(ctx, client)
	require.NoError(t, err)

	account, err := domain.NewAccount("110-0000-0002", "upsert holder", decimal.NewFromInt(1000))
	require.NoError(t, err)

	_, err = s.Save(ctx, account)
	require.NoError(t, err)

	require.NoError(t, account.Withdraw(decimal.NewFromInt(400)))

	_, err = s.Save(ctx, account)
	require.NoError(t, err)

	loaded, err := s.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Balance.Equal(decimal.NewFromInt(600)))

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIntegration_MongoTransactionStore_RoundTripAndQueries(t *testing.T) {
	client := setupMongoClient(t)
	ctx := context.Background()

	s, err := store.NewMongoTransactionStore(ctx, client)
	require.NoError(t, err)

	source := uuid.New()
	target := uuid.New()

	completed, err := domain.NewTransfer(source, target, decimal.RequireFromString("99.99"), "first")
	require.NoError(t, err)
	require.NoError(t, completed.Complete())

	failed, err := domain.NewTransfer(source, target, decimal.NewFromInt(10), "second")
	require.NoError(t, err)
	require.NoError(t, failed.Fail("insufficient balance"))

	_, err = s.Save(ctx, completed)
	require.NoError(t, err)
	_, err = s.Save(ctx, failed)
	require.NoError(t, err)

	loaded, err := s.FindByID(ctx, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, loaded.Status)
	assert.True(t, loaded.Amount.Equal(completed.Amount))
	require.NotNil(t, loaded.SourceAccountID)
	require.NotNil(t, loaded.TargetAccountID)
	assert.Equal(t, source, *loaded.SourceAccountID)
	assert.Equal(t, target, *loaded.TargetAccountID)

	bySource, err := s.FindBySourceAccountID(ctx, source)
	require.NoError(t, err)
	assert.Len(t, bySource, 2)

	byTarget, err := s.FindByTargetAccountID(ctx, target)
	require.NoError(t, err)
	assert.Len(t, byTarget, 2)

	byStatus, err := s.FindByStatus(ctx, domain.TransactionStatusFailed)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "insufficient balance", byStatus[0].Description)

	byType, err := s.FindByType(ctx, domain.TransactionTypeTransfer)
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	_, err = s.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
