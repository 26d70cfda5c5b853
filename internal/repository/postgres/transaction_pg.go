// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"

	"github.com/google/uuid"
)

// TransactionRepository implements repository.TransactionLedger for PostgreSQL.
type TransactionRepository struct {
	q repository.DBExecutor
}

// NewTransactionRepository creates a new TransactionRepository running its queries on q.
func NewTransactionRepository(q repository.DBExecutor) *TransactionRepository {
	return &TransactionRepository{q: q}
}

// Append inserts a new ledger entry and returns the id assigned by the sequence.
func (r *TransactionRepository) Append(ctx context.Context, sender domain.Origin, recipientID uuid.UUID, value domain.Money, ts time.Time) (int64, error) {
	query := `INSERT INTO transactions (sender_wallet_id, recipient_wallet_id, value, timestamp)
              VALUES ($1, $2, $3, $4) RETURNING id`

	var id int64
	if err := r.q.QueryRowContext(ctx, query, sender, recipientID, value, ts).Scan(&id); err != nil {
		return 0, mapError("append transaction", err)
	}
	return id, nil
}

// Query retrieves the ledger entries of a wallet matching filter, oldest first.
func (r *TransactionRepository) Query(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	where, args := buildTransactionFilter(filter)
	query := `SELECT id, sender_wallet_id, recipient_wallet_id, value, timestamp
		FROM transactions
		WHERE ` + where + `
		ORDER BY timestamp, id`

	transactions := []domain.Transaction{}
	if err := r.q.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, mapError("query transactions", err)
	}
	return transactions, nil
}

// buildTransactionFilter renders the WHERE clause for filter. The wallet id is always $1.
func buildTransactionFilter(filter repository.TransactionFilter) (string, []interface{}) {
	args := []interface{}{filter.WalletID}
	var conditions []string

	switch {
	case filter.Side == nil:
		conditions = append(conditions, "(sender_wallet_id = $1 OR recipient_wallet_id = $1)")
	case *filter.Side == domain.TransferSideDeposit:
		conditions = append(conditions, "recipient_wallet_id = $1")
	case *filter.Side == domain.TransferSideWithdraw:
		conditions = append(conditions, "sender_wallet_id = $1")
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("timestamp <= $%d", len(args)))
	}
	return strings.Join(conditions, " AND "), args
}
