// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct {
	q repository.DBExecutor // *sqlx.DB outside a unit of work, *sqlx.Tx inside one
}

// NewWalletRepository creates a new WalletRepository running its queries on q.
func NewWalletRepository(q repository.DBExecutor) *WalletRepository {
	return &WalletRepository{q: q}
}

// Create inserts a new wallet with a zero balance.
func (r *WalletRepository) Create(ctx context.Context, name string, ownerID uuid.UUID) (uuid.UUID, error) {
	wallet := domain.NewWallet(ownerID, name)
	query := `INSERT INTO wallets (id, owner_id, name, balance) VALUES ($1, $2, $3, $4)`
	if _, err := r.q.ExecContext(ctx, query, wallet.ID, wallet.OwnerID, wallet.Name, wallet.Balance); err != nil {
		return uuid.Nil, mapError("create wallet", err)
	}
	return wallet.ID, nil
}

// Get retrieves a wallet by its ID without locking it.
func (r *WalletRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, owner_id, name, balance FROM wallets WHERE id = $1`
	if err := r.q.GetContext(ctx, &wallet, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get wallet", err)
	}
	return &wallet, nil
}

// GetMany lists the wallets owned by ownerID.
func (r *WalletRepository) GetMany(ctx context.Context, ownerID uuid.UUID) ([]domain.WalletSummary, error) {
	wallets := []domain.WalletSummary{}
	query := `SELECT id, name FROM wallets WHERE owner_id = $1`
	if err := r.q.SelectContext(ctx, &wallets, query, ownerID); err != nil {
		return nil, mapError("list wallets", err)
	}
	return wallets, nil
}

// LockForUpdate reads a wallet with SELECT ... FOR UPDATE. The row stays locked
// until the surrounding transaction commits or rolls back.
func (r *WalletRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, owner_id, name, balance FROM wallets WHERE id = $1 FOR UPDATE`
	if err := r.q.GetContext(ctx, &wallet, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("lock wallet", err)
	}
	return &wallet, nil
}

// AdjustBalance adds delta to the wallet balance and returns the updated value.
// The wallets_balance_non_negative constraint rejects negative results.
func (r *WalletRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `UPDATE wallets SET balance = balance + $1 WHERE id = $2 RETURNING balance`
	if err := r.q.QueryRowContext(ctx, query, delta, id).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, util.NewNotFound(util.EntityWallet)
		}
		return decimal.Zero, mapError("adjust balance", err)
	}
	return balance, nil
}
