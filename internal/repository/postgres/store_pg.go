// internal/repository/postgres/store_pg.go
package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/util"
	"wallet-ledger/pkg/db"
)

// Store implements repository.Store on top of a PostgreSQL connection pool.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a Store using database.
func NewStore(database *sqlx.DB) *Store {
	return &Store{db: database}
}

func (s *Store) Wallets() repository.WalletRepository {
	return NewWalletRepository(s.db)
}

func (s *Store) Transactions() repository.TransactionLedger {
	return NewTransactionRepository(s.db)
}

// Begin opens a database transaction that backs the unit of work.
func (s *Store) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := db.BeginTx(ctx, s.db)
	if err != nil {
		return nil, util.NewStoreFault("begin unit of work", err)
	}
	return &unitOfWork{tx: tx}, nil
}

type unitOfWork struct {
	tx *sqlx.Tx
}

func (u *unitOfWork) Wallets() repository.WalletRepository {
	return NewWalletRepository(u.tx)
}

func (u *unitOfWork) Transactions() repository.TransactionLedger {
	return NewTransactionRepository(u.tx)
}

func (u *unitOfWork) Commit() error {
	if err := db.CommitTx(u.tx); err != nil {
		return util.NewStoreFault("commit unit of work", err)
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	return u.tx.Rollback()
}
