// internal/repository/postgres/store_pg_integration_test.go
package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-ledger/internal/config"
	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/repository/postgres"
	"wallet-ledger/internal/service"
	"wallet-ledger/internal/util"
	"wallet-ledger/pkg/db"
)

// setupTestDB connects to the database described by the DB_* variables and
// resets the ledger tables. Set WALLET_TEST_DB=1 to run these tests.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("WALLET_TEST_DB") != "1" {
		t.Skip("WALLET_TEST_DB not set; skipping PostgreSQL integration tests")
	}

	cfg, err := config.LoadDBConfig()
	require.NoError(t, err)

	ctx := context.Background()
	database, err := db.NewPostgresDB(ctx, *cfg)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.EnsureSchema(ctx, database))
	_, err = database.ExecContext(ctx, "TRUNCATE TABLE transactions, wallets RESTART IDENTITY CASCADE")
	require.NoError(t, err, "failed to clean up tables")
	return database
}

func TestPostgresStoreWallets(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	store := postgres.NewStore(database)
	owner := uuid.New()

	id, err := store.Wallets().Create(ctx, "main", owner)
	require.NoError(t, err)

	w, err := store.Wallets().Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, owner, w.OwnerID)
	assert.True(t, w.Balance.IsZero())

	_, err = store.Wallets().Create(ctx, "main", uuid.New())
	assert.ErrorIs(t, err, util.ErrDuplicateName)

	missing, err := store.Wallets().Get(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)

	list, err := store.Wallets().GetMany(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []domain.WalletSummary{{ID: id, Name: "main"}}, list)
}

func TestPostgresStoreNegativeBalanceRejected(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	store := postgres.NewStore(database)
	id, err := store.Wallets().Create(ctx, "main", uuid.New())
	require.NoError(t, err)

	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	defer db.RollbackTx(uow)

	_, err = uow.Wallets().LockForUpdate(ctx, id)
	require.NoError(t, err)
	_, err = uow.Wallets().AdjustBalance(ctx, id, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, util.ErrBalanceWouldGoNegative)
}

func TestPostgresLedgerRoundTrip(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	store := postgres.NewStore(database)
	owner := uuid.New()
	a, err := store.Wallets().Create(ctx, "a", owner)
	require.NoError(t, err)
	b, err := store.Wallets().Create(ctx, "b", owner)
	require.NoError(t, err)

	ts := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	depositID, err := store.Transactions().Append(ctx, domain.External(), a, domain.MustParseMoney("12.34567891"), ts)
	require.NoError(t, err)
	transferID, err := store.Transactions().Append(ctx, domain.FromWallet(a), b, domain.MustParseMoney("2"), ts.Add(time.Minute))
	require.NoError(t, err)
	assert.Greater(t, transferID, depositID)

	entries, err := store.Transactions().Query(ctx, repository.TransactionFilter{WalletID: a})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Sender.IsExternal())
	assert.Equal(t, "12.34567891", entries[0].Value.String())
	assert.True(t, ts.Equal(entries[0].Timestamp))
	sender, ok := entries[1].Sender.WalletID()
	require.True(t, ok)
	assert.Equal(t, a, sender)

	_, err = store.Transactions().Append(ctx, domain.FromWallet(a), a, domain.MustParseMoney("1"), ts)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestPostgresConcurrentOppositeTransfers(t *testing.T) {
	database := setupTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := service.NewWalletService(postgres.NewStore(database), service.UTCClock, util.DiscardLogger())
	owner := uuid.New()
	a, err := svc.CreateWallet(ctx, "A", owner)
	require.NoError(t, err)
	b, err := svc.CreateWallet(ctx, "B", owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, a, domain.MustParseMoney("50"), owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, b, domain.MustParseMoney("50"), owner)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, a, b, domain.MustParseMoney("1"), owner)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, b, a, domain.MustParseMoney("1"), owner)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	wa, err := svc.GetWallet(ctx, a)
	require.NoError(t, err)
	wb, err := svc.GetWallet(ctx, b)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(wa.Balance.Add(wb.Balance)))
}
