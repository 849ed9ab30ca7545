package payment

import "errors"

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrStorageFailure      = errors.New("payment storage failure")
	ErrInvariantViolation  = errors.New("payment invariant violation")
	ErrIdempotencyConflict = errors.New("idempotency key reused with different payload")
	ErrDuplicatePaymentID  = errors.New("duplicate payment id generated")
)
