// internal/repository/memory/transaction_repo.go
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/util"
)

type transactionLedger struct {
	store *Store
	uow   *unitOfWork
}

func (l *transactionLedger) Append(ctx context.Context, sender domain.Origin, recipientID uuid.UUID, value domain.Money, ts time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, util.NewStoreFault("append transaction", err)
	}
	if senderID, ok := sender.WalletID(); ok {
		if senderID == recipientID {
			return 0, util.NewValidationError(util.ErrSameWalletTransfer)
		}
		if !l.exists(senderID) {
			return 0, util.NewStoreFault("append transaction", fmt.Errorf("sender wallet %s does not exist", senderID))
		}
	}
	if !l.exists(recipientID) {
		return 0, util.NewStoreFault("append transaction", fmt.Errorf("recipient wallet %s does not exist", recipientID))
	}

	entry := domain.NewTransaction(sender, recipientID, value, ts)
	entry.ID = l.store.nextTxID.Add(1)

	if l.uow == nil {
		l.store.mu.Lock()
		l.store.transactions = append(l.store.transactions, *entry)
		l.store.mu.Unlock()
		return entry.ID, nil
	}

	l.uow.mu.Lock()
	defer l.uow.mu.Unlock()
	if l.uow.done {
		return 0, sql.ErrTxDone
	}
	l.uow.appended = append(l.uow.appended, *entry)
	return entry.ID, nil
}

func (l *transactionLedger) Query(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, util.NewStoreFault("query transactions", err)
	}
	transactions := []domain.Transaction{}

	l.store.mu.RLock()
	for i := range l.store.transactions {
		if matches(&l.store.transactions[i], filter) {
			transactions = append(transactions, l.store.transactions[i])
		}
	}
	l.store.mu.RUnlock()

	if l.uow != nil {
		l.uow.mu.Lock()
		for i := range l.uow.appended {
			if matches(&l.uow.appended[i], filter) {
				transactions = append(transactions, l.uow.appended[i])
			}
		}
		l.uow.mu.Unlock()
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		if !transactions[i].Timestamp.Equal(transactions[j].Timestamp) {
			return transactions[i].Timestamp.Before(transactions[j].Timestamp)
		}
		return transactions[i].ID < transactions[j].ID
	})
	return transactions, nil
}

func (l *transactionLedger) exists(id uuid.UUID) bool {
	if l.uow != nil {
		l.uow.mu.Lock()
		_, ok := l.uow.working(id)
		l.uow.mu.Unlock()
		if ok {
			return true
		}
	}
	_, ok := l.store.committed(id)
	return ok
}

func matches(t *domain.Transaction, filter repository.TransactionFilter) bool {
	if !t.Involves(filter.WalletID, filter.Side) {
		return false
	}
	if filter.From != nil && t.Timestamp.Before(*filter.From) {
		return false
	}
	if filter.To != nil && t.Timestamp.After(*filter.To) {
		return false
	}
	return true
}
