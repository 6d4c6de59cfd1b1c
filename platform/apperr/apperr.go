// Package apperr types the failures the lead pipeline reports to callers.
//
// The kinds follow the pipeline's error taxonomy: bad input and unusable
// configuration are the caller's problem (400), missing leads are 404, and a
// provider or optional backend that could not serve the call is 502. Best-effort
// misses (empty enrichment, location filter fallback) are never errors.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an Error for HTTP mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	// KindValidation covers request fields that fail domain rules, such as an
	// unknown source or pipeline stage.
	KindValidation
	// KindBadRequest covers requests the pipeline cannot serve as configured,
	// such as a single source without credentials.
	KindBadRequest
	// KindUnavailable means a lead source, Redis, or object storage failed or is
	// not set up. Details may carry per-source warnings.
	KindUnavailable
)

// Error is a typed pipeline error. Message is safe to show to API clients;
// Err keeps the upstream cause for logs and errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	Details interface{}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap keeps err as the cause. Only Message reaches the client.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithDetails attaches response details and returns e.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

func Unavailable(message string) *Error {
	return New(KindUnavailable, message)
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err's chain holds an *Error of kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
