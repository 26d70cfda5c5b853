// pkg/db/db_test.go
package db

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockTxController is a mock implementation of TxController.
type MockTxController struct {
	mock.Mock
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func TestCommitTx(t *testing.T) {
	tx := new(MockTxController)
	tx.On("Commit").Return(errors.New("commit failed")).Once()

	assert.EqualError(t, CommitTx(tx), "commit failed")
	tx.AssertExpectations(t)
}

func TestRollbackTxIgnoresFinishedTransactions(t *testing.T) {
	for _, err := range []error{nil, sql.ErrTxDone, errors.New("connection reset")} {
		tx := new(MockTxController)
		tx.On("Rollback").Return(err).Once()

		assert.NotPanics(t, func() { RollbackTx(tx) })
		tx.AssertExpectations(t)
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "ledger", Password: "pw", DBName: "wallets", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=ledger password=pw dbname=wallets sslmode=disable", cfg.DSN())
}

func TestSchema(t *testing.T) {
	schema := Schema()
	for _, fragment := range []string{
		"CREATE TABLE IF NOT EXISTS wallets",
		"CONSTRAINT wallets_name_key UNIQUE (name)",
		"CONSTRAINT wallets_balance_non_negative CHECK (balance >= 0)",
		"CREATE TABLE IF NOT EXISTS transactions",
		"sender_wallet_id_timestamp_idx",
		"recipient_wallet_id_timestamp_idx",
	} {
		assert.Contains(t, schema, fragment)
	}
}
