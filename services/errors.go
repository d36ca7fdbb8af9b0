package services

import "errors"

// Sentinel errors returned by the appointment, budget and payment services.
// Handlers map these onto HTTP status codes; anything else is a 500.
var (
	ErrValidation             = errors.New("invalid input")
	ErrForbidden              = errors.New("actor is not allowed to perform this transition")
	ErrNotFound               = errors.New("record not found")
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrInvalidState           = errors.New("operation not allowed in the current status")
	ErrConcurrentModification = errors.New("appointment was modified concurrently, retry")
	ErrInvalidLineItem        = errors.New("invalid budget line item")
	ErrCancellationWindow     = errors.New("appointment can no longer be cancelled")
	ErrDuplicatePayment       = errors.New("an approved payment already exists for this appointment")
	ErrPaymentPending         = errors.New("payment has not reached a final status yet")
	ErrUpstreamUnavailable    = errors.New("payment processor unavailable")
)
