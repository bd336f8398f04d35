// Package apperr defines the error kinds shared by the listing fetcher, the
// search controller and the HTTP layer. Callers branch on Kind, never on
// error text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is a missing or malformed input caught before any call.
	KindValidation
	// KindCredential is a rejected or missing API credential.
	KindCredential
	// KindTransient covers network, quota, parse and malformed replies.
	KindTransient
	// KindBadRequest is a malformed HTTP request body.
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCredential:
		return "credential"
	case KindTransient:
		return "transient"
	case KindBadRequest:
		return "bad_request"
	default:
		return "unknown"
	}
}

// Error is a failure carrying a Kind.
type Error struct {
	Kind    Kind
	Message string
	Op      string // operation that failed (optional)
	Err     error  // underlying error (optional)
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindCredential:
		return http.StatusUnauthorized
	case KindTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithOp sets the operation name and returns the same error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Credential(message string, err error) *Error {
	return Wrap(KindCredential, message, err)
}

func Transient(message string, err error) *Error {
	return Wrap(KindTransient, message, err)
}

func BadRequest(message string, err error) *Error {
	return Wrap(KindBadRequest, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
