// internal/domain/transaction_test.go
package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-ledger/internal/util"
)

func TestOriginSQL(t *testing.T) {
	id := uuid.New()

	v, err := External().Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = FromWallet(id).Value()
	require.NoError(t, err)
	assert.Equal(t, id.String(), v)

	var o Origin
	require.NoError(t, o.Scan(nil))
	assert.True(t, o.IsExternal())

	require.NoError(t, o.Scan(id.String()))
	got, ok := o.WalletID()
	assert.True(t, ok)
	assert.Equal(t, id, got)

	require.NoError(t, o.Scan([]byte(id.String())))
	assert.Equal(t, FromWallet(id), o)

	assert.Error(t, o.Scan("not-a-uuid"))
}

func TestOriginJSON(t *testing.T) {
	id := uuid.New()
	tx := Transaction{
		ID:                3,
		Sender:            External(),
		RecipientWalletID: id,
		Value:             MustParseMoney("1.5"),
		Timestamp:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	out, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 3,
		"sender_wallet_id": null,
		"recipient_wallet_id": "`+id.String()+`",
		"value": "1.5",
		"timestamp": "2024-05-01T10:00:00Z"
	}`, string(out))

	var o Origin
	require.NoError(t, json.Unmarshal([]byte(`"`+id.String()+`"`), &o))
	assert.Equal(t, FromWallet(id), o)
	require.NoError(t, json.Unmarshal([]byte(`null`), &o))
	assert.True(t, o.IsExternal())
	assert.Equal(t, "external", o.String())
}

func TestTransactionInvolves(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	transfer := NewTransaction(FromWallet(a), b, MustParseMoney("1"), time.Now())
	deposit := NewTransaction(External(), a, MustParseMoney("1"), time.Now())
	dep, wd := TransferSideDeposit, TransferSideWithdraw

	assert.True(t, transfer.Involves(a, nil))
	assert.True(t, transfer.Involves(b, nil))
	assert.True(t, transfer.Involves(a, &wd))
	assert.False(t, transfer.Involves(a, &dep))
	assert.True(t, transfer.Involves(b, &dep))
	assert.False(t, transfer.Involves(b, &wd))

	assert.True(t, deposit.Involves(a, &dep))
	assert.False(t, deposit.Involves(a, &wd))
	assert.False(t, deposit.Involves(uuid.Nil, &wd), "an external sender is never a wallet")
}

func TestParseTransferSide(t *testing.T) {
	side, err := ParseTransferSide("")
	assert.NoError(t, err)
	assert.Nil(t, side)

	side, err = ParseTransferSide("deposit")
	require.NoError(t, err)
	assert.Equal(t, TransferSideDeposit, *side)

	side, err = ParseTransferSide("withdraw")
	require.NoError(t, err)
	assert.Equal(t, TransferSideWithdraw, *side)

	_, err = ParseTransferSide("sideways")
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestWalletOwnership(t *testing.T) {
	owner := uuid.New()
	w := NewWallet(owner, "main")
	assert.NotEqual(t, uuid.Nil, w.ID)
	assert.True(t, w.Balance.IsZero())
	assert.True(t, w.OwnedBy(owner))
	assert.False(t, w.OwnedBy(uuid.New()))
}
