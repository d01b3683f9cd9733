package service

import (
	"errors"

	"feeportal/internal/repository"

	"gorm.io/gorm"
)

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUpstream     = errors.New("upstream failure")
)

// Error is a user-facing message tagged with a kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error     { return &Error{Kind: ErrNotFound, Msg: msg} }
func invalid(msg string) error      { return &Error{Kind: ErrValidation, Msg: msg} }
func conflict(msg string) error     { return &Error{Kind: ErrConflict, Msg: msg} }
func unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }
func forbidden(msg string) error    { return &Error{Kind: ErrForbidden, Msg: msg} }
func upstream(msg string) error     { return &Error{Kind: ErrUpstream, Msg: msg} }

// storeErr translates persistence errors into error kinds; other errors pass through.
func storeErr(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return conflict("resource already exists")
	case errors.Is(err, repository.ErrStaleVersion):
		return conflict("resource was modified concurrently, please retry")
	case errors.Is(err, repository.ErrInUse), errors.Is(err, gorm.ErrForeignKeyViolated):
		return conflict("resource is still in use")
	default:
		return err
	}
}
