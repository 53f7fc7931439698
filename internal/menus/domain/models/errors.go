package models

import "errors"

// Error classes shared by the services. The API layer maps each one to a
// status code.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

type classifiedError struct {
	class error
	msg   string
}

func (e *classifiedError) Error() string { return e.msg }

func (e *classifiedError) Unwrap() error { return e.class }

// NewError returns an error printed as msg that matches class with errors.Is.
func NewError(class error, msg string) error {
	return &classifiedError{class: class, msg: msg}
}
