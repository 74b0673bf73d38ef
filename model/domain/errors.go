package domain

import "errors"

// Business-rule failures. All are terminal: callers surface them
// verbatim, nothing in the core retries.
var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrNotCancellable     = errors.New("order cannot be cancelled in current status")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
)
