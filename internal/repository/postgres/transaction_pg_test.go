// internal/repository/postgres/transaction_pg_test.go
package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
)

func TestBuildTransactionFilter(t *testing.T) {
	walletID := uuid.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	deposit, withdraw := domain.TransferSideDeposit, domain.TransferSideWithdraw

	tests := []struct {
		name      string
		filter    repository.TransactionFilter
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			name:      "BothSidesNoBounds",
			filter:    repository.TransactionFilter{WalletID: walletID},
			wantWhere: "(sender_wallet_id = $1 OR recipient_wallet_id = $1)",
			wantArgs:  []interface{}{walletID},
		},
		{
			name:      "DepositFrom",
			filter:    repository.TransactionFilter{WalletID: walletID, Side: &deposit, From: &from},
			wantWhere: "recipient_wallet_id = $1 AND timestamp >= $2",
			wantArgs:  []interface{}{walletID, from},
		},
		{
			name:      "WithdrawTo",
			filter:    repository.TransactionFilter{WalletID: walletID, Side: &withdraw, To: &to},
			wantWhere: "sender_wallet_id = $1 AND timestamp <= $2",
			wantArgs:  []interface{}{walletID, to},
		},
		{
			name:      "BothBounds",
			filter:    repository.TransactionFilter{WalletID: walletID, From: &from, To: &to},
			wantWhere: "(sender_wallet_id = $1 OR recipient_wallet_id = $1) AND timestamp >= $2 AND timestamp <= $3",
			wantArgs:  []interface{}{walletID, from, to},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildTransactionFilter(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
