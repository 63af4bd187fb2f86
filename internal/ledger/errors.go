package ledger

import "errors"

// Every operation failure is one of these sentinels. Failures are synchronous
// and leave the ledger unchanged; callers may retry with corrected arguments.
var (
	ErrInvalidInput        = errors.New("invalid_input")
	ErrNotFound            = errors.New("not_found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAlreadySold         = errors.New("already_sold")
	ErrInsufficientPayment = errors.New("insufficient_payment")
	ErrNotEligible         = errors.New("not_eligible")
)
