package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable business error code surfaced to callers.
type ErrorCode string

const (
	// ErrorInvalidInput indicates a request value failed validation.
	ErrorInvalidInput ErrorCode = "C001"
	// ErrorInternal indicates an unexpected internal failure.
	ErrorInternal ErrorCode = "C003"
	// ErrorAccountNotFound indicates the referenced account does not exist.
	ErrorAccountNotFound ErrorCode = "A001"
	// ErrorDuplicateAccountNumber indicates the account number is already taken.
	ErrorDuplicateAccountNumber ErrorCode = "A002"
	// ErrorInsufficientBalance indicates a withdrawal exceeds the available balance.
	ErrorInsufficientBalance ErrorCode = "A003"
	// ErrorInactiveAccount indicates a mutation was attempted on a non-active account.
	ErrorInactiveAccount ErrorCode = "A004"
	// ErrorTransactionNotFound indicates the referenced transaction does not exist.
	ErrorTransactionNotFound ErrorCode = "T001"
	// ErrorInvalidTransactionState indicates an invalid lifecycle transition was requested.
	ErrorInvalidTransactionState ErrorCode = "T002"
	// ErrorTransferFailed indicates an unclassified failure during a transfer step.
	ErrorTransferFailed ErrorCode = "T003"
	// ErrorSameAccountTransfer indicates source and target accounts are identical.
	ErrorSameAccountTransfer ErrorCode = "T004"
	// ErrorLockAcquisition indicates the distributed lock was not acquired within the wait budget.
	ErrorLockAcquisition ErrorCode = "L001"
)

// Error is a structured business error carrying a stable code. The code set
// is fixed: every user-visible failure of the service maps to exactly one.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e Error) Unwrap() error {
	return e.Err
}

// NewError creates a business error with the given code and message.
func NewError(code ErrorCode, message string) error {
	return Error{Code: code, Message: message}
}

// Errorf creates a business error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a business error that wraps an underlying cause.
func WrapError(code ErrorCode, message string, err error) error {
	return Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the business error code from err. It returns ErrorInternal
// when err carries no code, so callers always get a deterministic mapping.
func CodeOf(err error) ErrorCode {
	var domainErr Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	return ErrorInternal
}

// IsCode reports whether err carries the given business error code.
func IsCode(err error, code ErrorCode) bool {
	var domainErr Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}

	return false
}
