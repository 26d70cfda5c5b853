// internal/repository/memory/wallet_repo.go
package memory

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/util"
)

// walletRepository serves wallet operations either directly on the store
// (uow == nil) or inside a unit of work.
type walletRepository struct {
	store *Store
	uow   *unitOfWork
}

func (r *walletRepository) Create(ctx context.Context, name string, ownerID uuid.UUID) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, util.NewStoreFault("create wallet", err)
	}
	wallet := domain.NewWallet(ownerID, name)
	if err := r.store.reserveName(name, wallet.ID); err != nil {
		return uuid.Nil, err
	}

	if r.uow == nil {
		r.store.mu.Lock()
		r.store.wallets[wallet.ID] = newWalletRow(*wallet)
		r.store.mu.Unlock()
		return wallet.ID, nil
	}

	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if r.uow.done {
		r.store.mu.Lock()
		delete(r.store.names, name)
		r.store.mu.Unlock()
		return uuid.Nil, sql.ErrTxDone
	}
	r.uow.created = append(r.uow.created, wallet.ID)
	r.uow.balances[wallet.ID] = *wallet
	return wallet.ID, nil
}

func (r *walletRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, util.NewStoreFault("get wallet", err)
	}
	if r.uow != nil {
		r.uow.mu.Lock()
		w, ok := r.uow.working(id)
		r.uow.mu.Unlock()
		if ok {
			return &w, nil
		}
	}
	w, ok := r.store.committed(id)
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *walletRepository) GetMany(ctx context.Context, ownerID uuid.UUID) ([]domain.WalletSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, util.NewStoreFault("list wallets", err)
	}
	summaries := []domain.WalletSummary{}

	r.store.mu.RLock()
	for _, row := range r.store.wallets {
		if row.wallet.OwnerID == ownerID {
			summaries = append(summaries, domain.WalletSummary{ID: row.wallet.ID, Name: row.wallet.Name})
		}
	}
	r.store.mu.RUnlock()

	if r.uow != nil {
		r.uow.mu.Lock()
		for _, id := range r.uow.created {
			if w := r.uow.balances[id]; w.OwnerID == ownerID {
				summaries = append(summaries, domain.WalletSummary{ID: w.ID, Name: w.Name})
			}
		}
		r.uow.mu.Unlock()
	}
	return summaries, nil
}

// LockForUpdate blocks until the row lock is free or ctx is done.
func (r *walletRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	if r.uow == nil {
		return nil, util.ErrNoUnitOfWork
	}

	r.uow.mu.Lock()
	if r.uow.done {
		r.uow.mu.Unlock()
		return nil, sql.ErrTxDone
	}
	if w, ok := r.uow.working(id); ok {
		r.uow.mu.Unlock()
		return &w, nil
	}
	r.uow.mu.Unlock()

	row, ok := r.store.row(id)
	if !ok {
		return nil, nil
	}

	select {
	case row.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, util.NewStoreFault("lock wallet", ctx.Err())
	}

	w, _ := r.store.committed(id)

	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if r.uow.done {
		<-row.lock
		return nil, sql.ErrTxDone
	}
	r.uow.held[id] = row
	r.uow.balances[id] = w
	return &w, nil
}

func (r *walletRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	if r.uow == nil {
		return decimal.Zero, util.ErrNoUnitOfWork
	}
	if err := ctx.Err(); err != nil {
		return decimal.Zero, util.NewStoreFault("adjust balance", err)
	}

	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if r.uow.done {
		return decimal.Zero, sql.ErrTxDone
	}
	w, ok := r.uow.working(id)
	if !ok {
		if _, exists := r.store.committed(id); !exists {
			return decimal.Zero, util.NewNotFound(util.EntityWallet)
		}
		return decimal.Zero, util.ErrLockNotHeld
	}

	balance := w.Balance.Add(delta)
	if balance.IsNegative() {
		return decimal.Zero, util.ErrBalanceWouldGoNegative
	}
	w.Balance = balance
	r.uow.balances[id] = w
	return balance, nil
}
