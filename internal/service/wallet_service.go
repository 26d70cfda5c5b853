// internal/service/wallet_service.go
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/util"
	"wallet-ledger/pkg/db"

	"github.com/google/uuid"
)

// WalletService defines the interface for the wallet ledger engine.
type WalletService interface {
	CreateWallet(ctx context.Context, name string, ownerID uuid.UUID) (uuid.UUID, error)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error)
	ListWallets(ctx context.Context, ownerID uuid.UUID) ([]domain.WalletSummary, error)
	Deposit(ctx context.Context, walletID uuid.UUID, value domain.Money, callerID uuid.UUID) (*domain.OperationResult, error)
	Transfer(ctx context.Context, senderID, recipientID uuid.UUID, value domain.Money, callerID uuid.UUID) (*domain.OperationResult, error)
	ListOperations(ctx context.Context, walletID uuid.UUID, from, to *time.Time, side *domain.TransferSide, callerID uuid.UUID) ([]domain.Transaction, error)
}

// Clock returns the current time. It is read once per operation.
type Clock func() time.Time

// UTCClock is the production clock.
func UTCClock() time.Time { return time.Now().UTC() }

// walletService implements the WalletService interface.
type walletService struct {
	store  repository.Store
	clock  Clock
	logger *slog.Logger
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(store repository.Store, clock Clock, logger *slog.Logger) WalletService {
	if clock == nil {
		clock = UTCClock
	}
	if logger == nil {
		logger = util.DiscardLogger()
	}
	return &walletService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// CreateWallet creates an empty wallet named name for ownerID.
func (s *walletService) CreateWallet(ctx context.Context, name string, ownerID uuid.UUID) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, util.NewValidationError(errors.New("wallet name must not be empty"))
	}
	if len(name) > domain.MaxWalletNameLength {
		return uuid.Nil, util.NewValidationError(fmt.Errorf("wallet name must be at most %d characters", domain.MaxWalletNameLength))
	}

	id, err := s.store.Wallets().Create(ctx, name, ownerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create wallet: %w", err)
	}
	s.logger.Info("Wallet created", "wallet_id", id, "owner_id", ownerID)
	return id, nil
}

// GetWallet reads a wallet without locking it.
func (s *walletService) GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.store.Wallets().Get(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("get wallet: failed to get wallet %s: %w", walletID, err)
	}
	if wallet == nil {
		return nil, util.NewNotFound(util.EntityWallet)
	}
	return wallet, nil
}

// ListWallets lists the wallets owned by ownerID.
func (s *walletService) ListWallets(ctx context.Context, ownerID uuid.UUID) ([]domain.WalletSummary, error) {
	wallets, err := s.store.Wallets().GetMany(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

// Deposit adds external money to a wallet. Anyone may deposit into any wallet;
// the resulting balance is only disclosed to the wallet's owner.
func (s *walletService) Deposit(ctx context.Context, walletID uuid.UUID, value domain.Money, callerID uuid.UUID) (*domain.OperationResult, error) {
	if !value.Decimal().IsPositive() {
		return nil, util.NewValidationError(domain.ErrNotPositive)
	}
	now := s.clock()

	var result *domain.OperationResult
	err := s.withinUnitOfWork(ctx, "deposit", func(uow repository.UnitOfWork) error {
		wallet, err := uow.Wallets().LockForUpdate(ctx, walletID)
		if err != nil {
			return fmt.Errorf("failed to lock wallet %s: %w", walletID, err)
		}
		if wallet == nil {
			return util.NewNotFound(util.EntityWallet)
		}

		balance, err := uow.Wallets().AdjustBalance(ctx, walletID, value.Decimal())
		if err != nil {
			return fmt.Errorf("failed to update wallet balance: %w", err)
		}

		if _, err := uow.Transactions().Append(ctx, domain.External(), walletID, value, now); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		result = &domain.OperationResult{Value: value}
		if wallet.OwnedBy(callerID) {
			result.Balance = &balance
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deposit committed", "wallet_id", walletID, "value", value.String())
	return result, nil
}

// Transfer moves value from the caller's sender wallet to the recipient wallet.
//
// Both rows are locked in ascending id order whatever their roles are, so two
// transfers over the same pair in opposite directions cannot deadlock. Checks
// run only after both locks are held, in the order: sender exists, caller owns
// sender, funds suffice, recipient exists.
func (s *walletService) Transfer(ctx context.Context, senderID, recipientID uuid.UUID, value domain.Money, callerID uuid.UUID) (*domain.OperationResult, error) {
	if senderID == recipientID {
		return nil, util.ErrSameWalletTransfer
	}
	if !value.Decimal().IsPositive() {
		return nil, util.NewValidationError(domain.ErrNotPositive)
	}
	now := s.clock()

	var result *domain.OperationResult
	err := s.withinUnitOfWork(ctx, "transfer", func(uow repository.UnitOfWork) error {
		locked, err := lockInOrder(ctx, uow.Wallets(), senderID, recipientID)
		if err != nil {
			return err
		}
		sender, recipient := locked[senderID], locked[recipientID]

		if sender == nil {
			return util.NewNotFound(util.EntitySenderWallet)
		}
		if !sender.OwnedBy(callerID) {
			return util.NewForbidden("user does not own the sender wallet")
		}
		if sender.Balance.LessThan(value.Decimal()) {
			return util.ErrInsufficientFunds
		}
		if recipient == nil {
			return util.NewNotFound(util.EntityRecipientWallet)
		}

		senderBalance, err := uow.Wallets().AdjustBalance(ctx, senderID, value.Neg())
		if err != nil {
			return fmt.Errorf("failed to update sender wallet balance: %w", err)
		}
		if _, err := uow.Wallets().AdjustBalance(ctx, recipientID, value.Decimal()); err != nil {
			return fmt.Errorf("failed to update recipient wallet balance: %w", err)
		}
		if _, err := uow.Transactions().Append(ctx, domain.FromWallet(senderID), recipientID, value, now); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		result = &domain.OperationResult{Value: value, Balance: &senderBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transfer committed", "sender_wallet_id", senderID, "recipient_wallet_id", recipientID, "value", value.String())
	return result, nil
}

// ListOperations returns the caller's wallet history, oldest first.
func (s *walletService) ListOperations(ctx context.Context, walletID uuid.UUID, from, to *time.Time, side *domain.TransferSide, callerID uuid.UUID) ([]domain.Transaction, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, util.NewValidationError(errors.New("from_timestamp must not be after to_timestamp"))
	}

	wallet, err := s.store.Wallets().Get(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("list operations: failed to get wallet %s: %w", walletID, err)
	}
	if wallet == nil {
		return nil, util.NewNotFound(util.EntityWallet)
	}
	if !wallet.OwnedBy(callerID) {
		return nil, util.NewForbidden("user does not own the wallet")
	}

	transactions, err := s.store.Transactions().Query(ctx, repository.TransactionFilter{
		WalletID: walletID,
		From:     from,
		To:       to,
		Side:     side,
	})
	if err != nil {
		return nil, fmt.Errorf("list operations: failed to query transactions: %w", err)
	}
	return transactions, nil
}

// withinUnitOfWork runs fn inside a unit of work and commits when fn succeeds.
// Any error from fn rolls back every write and releases every lock.
func (s *walletService) withinUnitOfWork(ctx context.Context, op string, fn func(uow repository.UnitOfWork) error) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer db.RollbackTx(uow)

	if err := fn(uow); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := db.CommitTx(uow); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}

// lockInOrder locks the given wallets in ascending byte order of their ids and
// returns what it found; absent wallets map to nil.
func lockInOrder(ctx context.Context, wallets repository.WalletRepository, a, b uuid.UUID) (map[uuid.UUID]*domain.Wallet, error) {
	first, second := a, b
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}

	locked := make(map[uuid.UUID]*domain.Wallet, 2)
	for _, id := range []uuid.UUID{first, second} {
		wallet, err := wallets.LockForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to lock wallet %s: %w", id, err)
		}
		locked[id] = wallet
	}
	return locked, nil
}
