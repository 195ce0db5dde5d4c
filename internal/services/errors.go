package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure so callers can react without
// inspecting message text
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindNotFound
	KindInsufficientFunds
	KindAuthRequired
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindAuthRequired:
		return "auth_required"
	default:
		return "unexpected"
	}
}

// Error is the tagged error returned by every service operation
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindUnexpected {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind carried by err. Untagged errors are unexpected.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnexpected
}

func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewInsufficientFundsError(message string) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: message}
}

func NewAuthRequiredError(message string) *Error {
	return &Error{Kind: KindAuthRequired, Message: message}
}

func NewUnexpectedError(message string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

var (
	ErrCardNotFound        = NewNotFoundError("card not found")
	ErrPlanNotFound        = NewNotFoundError("installment plan not found")
	ErrTransactionNotFound = NewNotFoundError("transaction not found")
	ErrFriendCardNotFound  = NewNotFoundError("friend card not found")
	ErrUserNotFound        = NewNotFoundError("user not found")
	ErrLoginRequired       = NewAuthRequiredError("login required")
	ErrInvalidCredentials  = NewAuthRequiredError("invalid email or password")
)
