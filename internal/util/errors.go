// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
)

// Common application-specific errors.
var (
	ErrNotFound               = errors.New("resource not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input provided")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrSameWalletTransfer     = errors.New("cannot transfer to the same wallet")
	ErrDuplicateName          = errors.New("wallet with this name already exists")
	ErrBalanceWouldGoNegative = errors.New("balance would go negative")
	ErrStoreFault             = errors.New("ledger store unavailable")
	ErrUnauthorized           = errors.New("unauthorized")

	// Store contract violations; these indicate a programming error in the caller.
	ErrNoUnitOfWork = errors.New("operation requires an active unit of work")
	ErrLockNotHeld  = errors.New("wallet lock not held by this unit of work")
)

// Entities reported by NotFoundError.
const (
	EntityWallet          = "wallet"
	EntitySenderWallet    = "sender_wallet"
	EntityRecipientWallet = "recipient_wallet"
)

// NotFoundError reports which entity was absent.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Entity)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound returns a NotFoundError for entity.
func NewNotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// ForbiddenError is returned when the caller does not own the wallet it acts on.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// NewForbidden returns a ForbiddenError carrying reason.
func NewForbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}

// ValidationError wraps the specific rule a caller-supplied value broke.
// It matches both ErrInvalidInput and the wrapped rule with errors.Is.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Err)
}

func (e *ValidationError) Unwrap() []error { return []error{ErrInvalidInput, e.Err} }

// NewValidationError wraps err as a ValidationError.
func NewValidationError(err error) error {
	return &ValidationError{Err: err}
}

// StoreFaultError wraps an underlying store/driver failure. Its message never
// includes the driver error; use errors.Unwrap or %+v logging to get at it.
type StoreFaultError struct {
	Op  string
	Err error
}

func (e *StoreFaultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, ErrStoreFault)
}

func (e *StoreFaultError) Unwrap() []error { return []error{ErrStoreFault, e.Err} }

// NewStoreFault wraps err as a StoreFaultError for op.
func NewStoreFault(op string, err error) error {
	return &StoreFaultError{Op: op, Err: err}
}

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
