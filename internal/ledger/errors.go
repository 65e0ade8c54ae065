package ledger

import (
	"errors" // Error kinds and wrapping
	"fmt"    // Formatted errors

	"github.com/shopspring/decimal" // Fixed-point amounts
)

// Error kinds returned by the ledger. Callers match them with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrDuplicate           = errors.New("already exists")
	ErrUserReferenced      = errors.New("user is referenced by charges or transactions")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceMismatch     = errors.New("balance mismatch")
	ErrInvariantViolation  = errors.New("invariant violation")

	// ErrInvalidTransition is a validation error: terminal statuses never change.
	ErrInvalidTransition = fmt.Errorf("%w: status cannot be changed", ErrValidation)
)

// InsufficientBalanceError is returned by the balance mutator when a change
// would take a balance below zero. Nothing is persisted in that case.
type InsufficientBalanceError struct {
	PhoneNumber string
	Balance     decimal.Decimal // Balance before the attempted change
	Delta       decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("user %s has insufficient balance %s for change %s", e.PhoneNumber, e.Balance, e.Delta)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// BalanceMismatchError reports a stored balance that disagrees with the
// balance recomputed from confirmed history.
type BalanceMismatchError struct {
	PhoneNumber string
	Balance     decimal.Decimal
	Expected    decimal.Decimal
}

func (e *BalanceMismatchError) Error() string {
	return fmt.Sprintf("user %s balance %s does not match confirmed history %s", e.PhoneNumber, e.Balance, e.Expected)
}

func (e *BalanceMismatchError) Is(target error) bool {
	return target == ErrBalanceMismatch
}

// Diff is the stored balance minus the expected balance
func (e *BalanceMismatchError) Diff() decimal.Decimal {
	return e.Balance.Sub(e.Expected)
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}
