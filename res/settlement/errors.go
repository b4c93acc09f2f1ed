package settlement

import "fmt"

// ValidationError reports malformed input: out-of-range ratings,
// non-positive withdrawal amounts, missing payout details.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("settlement: validation failed: %s", e.Reason)
}

// InsufficientBalanceError reports a withdrawal request exceeding the
// cleaner's available balance.
type InsufficientBalanceError struct {
	RequestedCents int64
	AvailableCents int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("settlement: insufficient balance: requested %d, available %d", e.RequestedCents, e.AvailableCents)
}

// PolicyViolationError reports an operation outside a business-policy
// window, e.g. a withdrawal requested before the daily settlement hour.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("settlement: policy violation: %s", e.Reason)
}

// ConflictError reports an operation that would mutate already-settled
// state, e.g. rating a booking twice or completing a completed booking.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("settlement: conflict: %s", e.Reason)
}
