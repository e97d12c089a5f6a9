package orders

import "errors"

// Error kinds. Every error returned by Service wraps exactly one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrBusinessRule = errors.New("business rule violation")
	ErrUpstream     = errors.New("upstream failure")
	ErrPersistence  = errors.New("persistence failure")
)

var (
	ErrCustomerNotFound   = errors.New("no customer exists with the provided id")
	ErrPartialReservation = errors.New("product service returned fewer results than requested lines")
)
