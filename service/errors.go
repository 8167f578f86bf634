package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for ledger and settlement failures. Callers branch with
// errors.Is and turn each into a user- or admin-facing message at the point
// of the operation.
var (
	// ErrInsufficientFunds is returned when a debit would drive a balance negative
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConcurrentModification is returned when a conditional balance update
	// lost the race to another operation and bounded retries were exhausted.
	// Retryable by the caller; never silently retried with stale data.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrRolloverNotMet is returned when a withdrawal is blocked by the
	// rollover requirement. The user-facing message stays generic.
	ErrRolloverNotMet = errors.New("rollover requirement not met")

	// ErrNotFound is returned for an unknown user or transaction
	ErrNotFound = errors.New("not found")

	// ErrAlreadySettled is returned when a settlement conditional update
	// affected zero rows. Callers treat it as a success-no-op so retried
	// confirmations stay idempotent.
	ErrAlreadySettled = errors.New("transaction already settled")
)

// ValidationError reports malformed user input (bad amount, short reference
// id). The conversation re-prompts without a state transition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
