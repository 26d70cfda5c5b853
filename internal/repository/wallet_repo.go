// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"wallet-ledger/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
// Absent wallets are reported as (nil, nil) by the lookup methods.
type WalletRepository interface {
	// Create inserts a wallet with zero balance. A taken name yields util.ErrDuplicateName.
	Create(ctx context.Context, name string, ownerID uuid.UUID) (uuid.UUID, error)
	// Get reads a wallet without locking it.
	Get(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	// GetMany lists id/name pairs of every wallet owned by ownerID.
	GetMany(ctx context.Context, ownerID uuid.UUID) ([]domain.WalletSummary, error)
	// LockForUpdate reads a wallet and holds an exclusive row lock on it until the
	// enclosing unit of work ends. No lock is taken when the wallet is absent.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	// AdjustBalance adds delta to the balance and returns the new value. The caller must
	// hold the lock from LockForUpdate. A negative result yields util.ErrBalanceWouldGoNegative.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}
