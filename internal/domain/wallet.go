// internal/domain/wallet.go
package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// MaxWalletNameLength bounds wallet names accepted at creation.
const MaxWalletNameLength = 255

// Wallet represents a named, owned balance-holding account.
type Wallet struct {
	ID      uuid.UUID       `db:"id" json:"id"`             // Generated at creation, immutable
	OwnerID uuid.UUID       `db:"owner_id" json:"owner_id"` // Owning account, immutable
	Name    string          `db:"name" json:"name"`         // Unique across the whole store
	Balance decimal.Decimal `db:"balance" json:"balance"`   // Never negative outside a unit of work
}

// NewWallet creates a new Wallet instance with a fresh identifier and zero balance.
func NewWallet(ownerID uuid.UUID, name string) *Wallet {
	return &Wallet{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    name,
		Balance: decimal.Zero, // Initialize balance to 0
	}
}

// OwnedBy reports whether ownerID owns the wallet.
func (w *Wallet) OwnedBy(ownerID uuid.UUID) bool {
	return w.OwnerID == ownerID
}

// WalletSummary is the id/name pair returned when listing an owner's wallets.
type WalletSummary struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// OperationResult is what a deposit or transfer reports back to the caller.
// Balance is nil when the caller is not allowed to see it.
type OperationResult struct {
	Value   Money            `json:"value"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}
