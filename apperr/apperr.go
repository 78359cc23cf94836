// Package apperr is the error taxonomy shared by the domain services and
// the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Forbidden
	Conflict
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	}
	return "internal"
}

// Error carries a user-facing message and the kind of failure. Status, when
// set, overrides the default HTTP status of the kind.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error to a response status code.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// WithStatus returns a copy of e answering with the given status code.
func (e *Error) WithStatus(code int) *Error {
	c := *e
	c.Status = code
	return &c
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func NewValidation(msg string) *Error { return New(Validation, msg) }
func NewNotFound(msg string) *Error   { return New(NotFound, msg) }
func NewForbidden(msg string) *Error  { return New(Forbidden, msg) }
func NewConflict(msg string) *Error   { return New(Conflict, msg) }

// Wrap reports an unexpected failure of err under msg.
func Wrap(err error, msg string) *Error {
	return &Error{Kind: Internal, Message: msg, Err: err}
}

// From returns err as an *Error, treating anything unknown as Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, "Internal server error")
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
