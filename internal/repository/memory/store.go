// internal/repository/memory/store.go
//
// Package memory is a concurrency-safe in-memory implementation of the ledger
// store. Wallet rows carry real exclusive locks, so units of work block each
// other exactly where a relational store would.
package memory

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/util"
)

type walletRow struct {
	wallet domain.Wallet // committed state, guarded by Store.mu
	lock   chan struct{} // holding the single token means holding the row lock
}

func newWalletRow(w domain.Wallet) *walletRow {
	return &walletRow{wallet: w, lock: make(chan struct{}, 1)}
}

// Store implements repository.Store in memory.
type Store struct {
	mu           sync.RWMutex
	wallets      map[uuid.UUID]*walletRow
	names        map[string]uuid.UUID // committed and reserved names
	transactions []domain.Transaction
	nextTxID     atomic.Int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		wallets: make(map[uuid.UUID]*walletRow),
		names:   make(map[string]uuid.UUID),
	}
}

// Wallets returns a repository whose calls each commit on their own.
// Locking and balance mutation are rejected outside a unit of work.
func (s *Store) Wallets() repository.WalletRepository {
	return &walletRepository{store: s}
}

// Transactions returns a ledger whose appends commit immediately.
func (s *Store) Transactions() repository.TransactionLedger {
	return &transactionLedger{store: s}
}

// Begin starts a unit of work.
func (s *Store) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, util.NewStoreFault("begin unit of work", err)
	}
	return &unitOfWork{
		store:    s,
		held:     make(map[uuid.UUID]*walletRow),
		balances: make(map[uuid.UUID]domain.Wallet),
	}, nil
}

func (s *Store) row(id uuid.UUID) (*walletRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.wallets[id]
	return row, ok
}

func (s *Store) committed(id uuid.UUID) (domain.Wallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.wallets[id]
	if !ok {
		return domain.Wallet{}, false
	}
	return row.wallet, true
}

// reserveName claims name for id, failing when it is taken or reserved.
func (s *Store) reserveName(name string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.names[name]; taken {
		return util.ErrDuplicateName
	}
	s.names[name] = id
	return nil
}

// unitOfWork buffers every write until Commit. Rows it has locked keep their
// working copy in balances; wallets it created live in created until Commit.
type unitOfWork struct {
	store *Store

	mu       sync.Mutex
	done     bool
	held     map[uuid.UUID]*walletRow
	balances map[uuid.UUID]domain.Wallet
	created  []uuid.UUID
	appended []domain.Transaction
}

func (u *unitOfWork) Wallets() repository.WalletRepository {
	return &walletRepository{store: u.store, uow: u}
}

func (u *unitOfWork) Transactions() repository.TransactionLedger {
	return &transactionLedger{store: u.store, uow: u}
}

// Commit publishes the buffered writes and releases every lock.
func (u *unitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return sql.ErrTxDone
	}

	u.store.mu.Lock()
	for _, id := range u.created {
		u.store.wallets[id] = newWalletRow(u.balances[id])
	}
	for id, row := range u.held {
		row.wallet = u.balances[id]
	}
	u.store.transactions = append(u.store.transactions, u.appended...)
	u.store.mu.Unlock()

	u.finish()
	return nil
}

// Rollback discards the buffered writes and releases every lock.
func (u *unitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return sql.ErrTxDone
	}

	if len(u.created) > 0 {
		u.store.mu.Lock()
		for _, id := range u.created {
			delete(u.store.names, u.balances[id].Name)
		}
		u.store.mu.Unlock()
	}

	u.finish()
	return nil
}

// finish releases the row locks. Callers hold u.mu.
func (u *unitOfWork) finish() {
	for _, row := range u.held {
		<-row.lock
	}
	u.done = true
	u.held = nil
	u.balances = nil
	u.created = nil
	u.appended = nil
}

// working returns this unit's view of a wallet it locked or created.
func (u *unitOfWork) working(id uuid.UUID) (domain.Wallet, bool) {
	w, ok := u.balances[id]
	return w, ok
}
