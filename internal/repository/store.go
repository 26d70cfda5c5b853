// internal/repository/store.go
package repository

import (
	"context"

	"wallet-ledger/pkg/db"
)

// Store is the transactional ledger store. Repositories obtained from the store
// itself run each call on its own; repositories obtained from a UnitOfWork share
// its locks and its all-or-nothing outcome.
type Store interface {
	Wallets() WalletRepository
	Transactions() TransactionLedger
	// Begin starts a unit of work. The caller must end it with Commit or Rollback.
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork is an atomic group of store operations.
// Rollback after Commit is a no-op that returns sql.ErrTxDone.
type UnitOfWork interface {
	db.TxController
	Wallets() WalletRepository
	Transactions() TransactionLedger
}
