package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrBadRequest    = errors.New("bad request")
	ErrUnprocessable = errors.New("unprocessable")
	ErrInternal      = errors.New("internal")
)

// Public error codes returned in response envelopes. Mobile clients branch on
// the literal values, so they are part of the wire contract.
const (
	CodeCustomerNotFound   = "CUSTOMER_NOT_FOUND"
	CodeAlertTypeNotFound  = "ALERT_TYPE_NOT_FOUND"
	CodeAlertStateNotFound = "ALERT_STATE_NOT_FOUND"
	CodeAlertNotFound      = "ALERT_NOT_FOUND"
)

// CodedError pairs a public error code with one of the sentinel errors above.
// errors.Is sees through it to the sentinel; CodeOf recovers the code.
type CodedError struct {
	Code string
	Kind error
}

func (e *CodedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Kind)
}

func (e *CodedError) Unwrap() error {
	return e.Kind
}

// Coded wraps a sentinel error with a public error code.
func Coded(code string, kind error) error {
	return &CodedError{Code: code, Kind: kind}
}

// CodeOf returns the public code carried by err, or "" when there is none.
func CodeOf(err error) string {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
