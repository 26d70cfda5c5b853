// internal/repository/postgres/errors.go
package postgres

import (
	"errors"

	"github.com/lib/pq"

	"wallet-ledger/internal/util"
)

// PostgreSQL SQLSTATE codes the repositories translate into domain errors.
const (
	codeUniqueViolation = pq.ErrorCode("23505")
	codeCheckViolation  = pq.ErrorCode("23514")
)

// mapError translates driver errors into the application's error taxonomy.
// Anything it does not recognise becomes a store fault so driver details never
// reach callers.
func mapError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			if pqErr.Constraint == "wallets_name_key" {
				return util.ErrDuplicateName
			}
		case codeCheckViolation:
			if pqErr.Constraint == "wallets_balance_non_negative" {
				return util.ErrBalanceWouldGoNegative
			}
			return util.NewValidationError(errors.New(pqErr.Message))
		}
	}
	return util.NewStoreFault(op, err)
}
