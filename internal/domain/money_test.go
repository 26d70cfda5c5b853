// internal/domain/money_test.go
package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-ledger/internal/util"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "10.0001", want: "10.0001"},
		{in: "0.00000001", want: "0.00000001"},
		{in: "1.000000000", want: "1"},
		{in: "12345678901234567890.12345678", want: "12345678901234567890.12345678"},
		{in: "0.000000001", wantErr: ErrTooManyDecimals},
		{in: "1.123456789", wantErr: ErrTooManyDecimals},
		{in: "0", wantErr: ErrNotPositive},
		{in: "-1", wantErr: ErrNotPositive},
		{in: "abc", wantErr: util.ErrInvalidInput},
		{in: "1e-8", want: "0.00000001"},
		{in: "1000e-11", want: "0.00000001"},
		{in: "1.5e3", want: "1500"},
		{in: "999999999999999999999999999999.99999999", want: "999999999999999999999999999999.99999999"},
		{in: "1e-20", wantErr: ErrTooManyDecimals},
		{in: "1e-400000000", wantErr: ErrTooManyDecimals},
		{in: "1e30", wantErr: ErrTooLarge},
		{in: "1e400000000", wantErr: ErrTooLarge},
		{in: "1" + strings.Repeat("0", 80), wantErr: util.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMoney(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, util.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(m.Decimal()), "got %s", m)
		})
	}
}

func TestParseMoneyRejectsHugeExponentsQuickly(t *testing.T) {
	for _, in := range []string{"1e-400000000", "1e400000000", "-1e400000000"} {
		done := make(chan error, 1)
		go func() {
			_, err := ParseMoney(in)
			done <- err
		}()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, util.ErrInvalidInput, in)
		case <-time.After(time.Second):
			t.Fatalf("ParseMoney(%q) did not return", in)
		}
	}
}

func TestMoneyJSONRejectsHugeExponent(t *testing.T) {
	var body struct {
		Value Money `json:"value"`
	}
	err := json.Unmarshal([]byte(`{"value":"1e-400000000"}`), &body)
	assert.ErrorIs(t, err, ErrTooManyDecimals)

	err = json.Unmarshal([]byte(`{"value":1e400000000}`), &body)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestMoneyJSON(t *testing.T) {
	var body struct {
		Value Money `json:"value"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"value":"2.5"}`), &body))
	assert.Equal(t, "2.5", body.Value.String())

	require.NoError(t, json.Unmarshal([]byte(`{"value":0.25}`), &body))
	assert.Equal(t, "0.25", body.Value.String())

	err := json.Unmarshal([]byte(`{"value":"-3"}`), &body)
	assert.ErrorIs(t, err, ErrNotPositive)

	err = json.Unmarshal([]byte(`{"value":"0.123456789"}`), &body)
	assert.ErrorIs(t, err, ErrTooManyDecimals)

	out, err := json.Marshal(struct {
		Value Money `json:"value"`
	}{MustParseMoney("7.25")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"7.25"}`, string(out))
}

func TestMoneyNeg(t *testing.T) {
	m := MustParseMoney("3.5")
	assert.Equal(t, "-3.5", m.Neg().String())
	assert.True(t, m.Equal(MustParseMoney("3.50")))
}

func TestMustParseMoneyPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseMoney("0") })
}
