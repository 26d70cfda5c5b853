// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"time"

	"wallet-ledger/internal/domain"

	"github.com/google/uuid"
)

// TransactionFilter selects ledger entries of one wallet. Nil fields do not restrict.
// Time bounds are inclusive.
type TransactionFilter struct {
	WalletID uuid.UUID
	From     *time.Time
	To       *time.Time
	Side     *domain.TransferSide
}

// TransactionLedger defines the interface for the append-only transaction ledger.
type TransactionLedger interface {
	// Append inserts one immutable entry and returns its store-assigned id.
	Append(ctx context.Context, sender domain.Origin, recipientID uuid.UUID, value domain.Money, ts time.Time) (int64, error)
	// Query returns the matching entries ordered by timestamp ascending, then id.
	Query(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
}
