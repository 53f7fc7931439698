package menurepo

import "errors"

var (
	ErrMenuNotFound = errors.New("menu not found")
	ErrDishNotFound = errors.New("dish not found")
	// ErrBadReference is returned when a write points at a row that doesn't exist.
	ErrBadReference = errors.New("unknown reference")
	ErrInvalidValue = errors.New("value out of range")
)
