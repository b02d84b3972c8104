// Package apperr defines the error taxonomy shared by the orchestration core
// and the HTTP shell. Every error leaving a gateway, repository or service is
// one of these kinds so the boundary can map it to a status code without
// string matching.
package apperr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindGeneric Kind = iota
	KindValidation
	KindNotFound
	KindInsufficientFunds
	KindUnavailable
)

// Error carries a kind, a human-readable message suitable for ledger
// errorMessage columns, and the wrapped cause when one exists.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// NotFound marks a referenced resource as absent. Never retried, never
// masked by fallbacks.
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// InsufficientFunds carries the requested total and the available balance.
func InsufficientFunds(requested, available decimal.Decimal) *Error {
	return &Error{
		Kind:    KindInsufficientFunds,
		Message: fmt.Sprintf("Insufficient funds. Requested: %s, Available: %s", requested, available),
	}
}

// Unavailable marks a dependency whose circuit is open or whose calls keep
// failing. Terminal for the request that needed it.
func Unavailable(dependency string, cause error) *Error {
	return &Error{
		Kind:    KindUnavailable,
		Message: fmt.Sprintf("%s service is currently unavailable. Please try again later.", dependency),
		Err:     cause,
	}
}

// Validation rejects a malformed request before orchestration starts.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Wrap attaches a generic kind to an unexpected error.
func Wrap(message string, cause error) *Error {
	return &Error{Kind: KindGeneric, Message: message, Err: cause}
}

// KindOf extracts the kind from err, defaulting to KindGeneric for errors
// produced outside this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneric
}

func IsNotFound(err error) bool { return is(err, KindNotFound) }

func IsInsufficientFunds(err error) bool { return is(err, KindInsufficientFunds) }

func IsUnavailable(err error) bool { return is(err, KindUnavailable) }

func is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
