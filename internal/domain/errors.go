package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrUserNotFound         = errors.New("user_not_found")
	ErrSymbolNotFound       = errors.New("symbol_not_found")
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidState         = errors.New("invalid_state")
	ErrInsufficientFunds    = errors.New("insufficient_funds")
	ErrInsufficientHoldings = errors.New("insufficient_holdings")

	// ErrInconsistent signals a lock-accounting invariant violated
	// mid-settlement. The enclosing operation is aborted with no
	// visible state change; it is never fatal to the process.
	ErrInconsistent = errors.New("inconsistent_state")

	// ErrConflict signals a lost race on a conditional status update.
	// Callers may retry a bounded number of times.
	ErrConflict = errors.New("concurrency_conflict")
)

// ValidationError represents a request validation failure with
// field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
