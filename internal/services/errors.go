package services

import "errors"

var (
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidState     = errors.New("invalid state")
	ErrOutOfWindow      = errors.New("out of window")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrStorageDisabled  = errors.New("storage not configured")
)
