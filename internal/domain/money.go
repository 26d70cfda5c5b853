// internal/domain/money.go
package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"wallet-ledger/internal/util"
)

const (
	// MaxFractionDigits is the number of digits allowed after the decimal point.
	MaxFractionDigits = 8
	// MaxIntegerDigits is the number of digits allowed before the decimal point.
	MaxIntegerDigits = 30

	// maxCoefficientDigits bounds the written form, trailing zeros included.
	maxCoefficientDigits = 64
)

var (
	ErrNotPositive     = errors.New("value must be positive")
	ErrTooManyDecimals = fmt.Errorf("value must have at most %d digits after the decimal point", MaxFractionDigits)
	ErrTooLarge        = fmt.Errorf("value must have at most %d digits before the decimal point", MaxIntegerDigits)
)

var ten = big.NewInt(10)

// Money is a strictly positive amount with at most MaxFractionDigits fractional digits.
// The zero Money is not a valid amount; obtain one through NewMoney or ParseMoney.
type Money struct {
	d decimal.Decimal
}

// NewMoney validates d and returns it as Money.
// Trailing zeros do not count towards the fractional digit limit.
// Only the coefficient and exponent are inspected, so huge exponents are
// rejected without ever being rescaled.
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.Sign() <= 0 {
		return Money{}, util.NewValidationError(ErrNotPositive)
	}

	coef := d.Coefficient()
	if len(coef.String()) > maxCoefficientDigits {
		return Money{}, util.NewValidationError(fmt.Errorf("value must have at most %d significant digits", maxCoefficientDigits))
	}

	// Strip trailing zeros into the exponent.
	exp := int64(d.Exponent())
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(coef, ten, r)
		if r.Sign() != 0 {
			break
		}
		coef.Set(q)
		exp++
	}

	if exp < -MaxFractionDigits {
		return Money{}, util.NewValidationError(ErrTooManyDecimals)
	}
	if int64(len(coef.String()))+exp > MaxIntegerDigits {
		return Money{}, util.NewValidationError(ErrTooLarge)
	}
	return Money{d: decimal.NewFromBigInt(coef, int32(exp))}, nil
}

// ParseMoney parses s as a decimal and validates it.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, util.NewValidationError(fmt.Errorf("value %q is not a decimal number", s))
	}
	return NewMoney(d)
}

// MustParseMoney is like ParseMoney but panics on error. Intended for tests and constants.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Neg returns the negated amount, used as a balance delta for debits.
func (m Money) Neg() decimal.Decimal { return m.d.Neg() }

// Equal reports whether both amounts are numerically equal.
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) String() string { return m.d.String() }

// MarshalJSON encodes the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.d.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare JSON numbers and validates the result.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return util.NewValidationError(fmt.Errorf("value is not a decimal number: %w", err))
	}
	parsed, err := NewMoney(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner. Stored values are trusted and not re-validated.
func (m *Money) Scan(src interface{}) error {
	return m.d.Scan(src)
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.d.Value()
}
