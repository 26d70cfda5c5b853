// internal/domain/transaction.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wallet-ledger/internal/util"
)

// Origin says where the money of a ledger entry came from: either from outside
// the system (an external deposit) or from another wallet.
type Origin struct {
	walletID   uuid.UUID
	fromWallet bool
}

// External returns the Origin of an external deposit.
func External() Origin { return Origin{} }

// FromWallet returns the Origin of a wallet-to-wallet transfer.
func FromWallet(id uuid.UUID) Origin { return Origin{walletID: id, fromWallet: true} }

// IsExternal reports whether money entered the system with this entry.
func (o Origin) IsExternal() bool { return !o.fromWallet }

// WalletID returns the sending wallet, if any.
func (o Origin) WalletID() (uuid.UUID, bool) { return o.walletID, o.fromWallet }

func (o Origin) String() string {
	if o.IsExternal() {
		return "external"
	}
	return o.walletID.String()
}

// Scan implements sql.Scanner; NULL maps to External.
func (o *Origin) Scan(src interface{}) error {
	var n uuid.NullUUID
	if err := n.Scan(src); err != nil {
		return fmt.Errorf("scan origin: %w", err)
	}
	*o = Origin{walletID: n.UUID, fromWallet: n.Valid}
	return nil
}

// Value implements driver.Valuer; External is stored as NULL.
func (o Origin) Value() (driver.Value, error) {
	if o.IsExternal() {
		return nil, nil
	}
	return o.walletID.String(), nil
}

// MarshalJSON encodes External as null and a wallet origin as its id.
func (o Origin) MarshalJSON() ([]byte, error) {
	if o.IsExternal() {
		return []byte("null"), nil
	}
	return json.Marshal(o.walletID)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (o *Origin) UnmarshalJSON(data []byte) error {
	var n uuid.NullUUID
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	*o = Origin{walletID: n.UUID, fromWallet: n.Valid}
	return nil
}

// Transaction is an immutable ledger entry for one value movement.
type Transaction struct {
	ID                int64     `db:"id" json:"id"`                                   // Assigned by the store, monotonic
	Sender            Origin    `db:"sender_wallet_id" json:"sender_wallet_id"`       // External for deposits
	RecipientWalletID uuid.UUID `db:"recipient_wallet_id" json:"recipient_wallet_id"` // Never empty
	Value             Money     `db:"value" json:"value"`                             // Always positive
	Timestamp         time.Time `db:"timestamp" json:"timestamp"`                     // Captured when the operation began
}

// NewTransaction builds an entry ready to be appended to the ledger.
func NewTransaction(sender Origin, recipientID uuid.UUID, value Money, ts time.Time) *Transaction {
	return &Transaction{
		Sender:            sender,
		RecipientWalletID: recipientID,
		Value:             value,
		Timestamp:         ts,
	}
}

// Involves reports whether walletID appears on the given side of the entry.
// A nil side matches either.
func (t *Transaction) Involves(walletID uuid.UUID, side *TransferSide) bool {
	senderID, fromWallet := t.Sender.WalletID()
	isSender := fromWallet && senderID == walletID
	isRecipient := t.RecipientWalletID == walletID
	if side == nil {
		return isSender || isRecipient
	}
	switch *side {
	case TransferSideDeposit:
		return isRecipient
	case TransferSideWithdraw:
		return isSender
	}
	return false
}

// TransferSide restricts a history query to one side of the wallet's entries.
type TransferSide string

const (
	TransferSideDeposit  TransferSide = "deposit"  // Entries where the wallet is the recipient
	TransferSideWithdraw TransferSide = "withdraw" // Entries where the wallet is the sender
)

// ParseTransferSide parses s; an empty string means no restriction and yields nil.
func ParseTransferSide(s string) (*TransferSide, error) {
	if s == "" {
		return nil, nil
	}
	side := TransferSide(s)
	switch side {
	case TransferSideDeposit, TransferSideWithdraw:
		return &side, nil
	}
	return nil, util.NewValidationError(fmt.Errorf("unknown side %q", s))
}
