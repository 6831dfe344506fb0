package domain

import (
	"errors"
	"fmt"
)

// ErrorCode names the rule a rejected input broke.
type ErrorCode string

const (
	CodeInvalidAmount  ErrorCode = "InvalidAmount"
	CodeInvalidMethod  ErrorCode = "InvalidMethod"
	CodeInvalidName    ErrorCode = "InvalidName"
	CodeInvalidDelta   ErrorCode = "InvalidDelta"
	CodeInvalidCounter ErrorCode = "InvalidCounter"
	CodeInvalidDate    ErrorCode = "InvalidDate"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrStorage      = errors.New("storage failure")
)

// ValidationError is a client-caused rejection. It is always raised before
// any state is touched.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a *ValidationError with a formatted message.
func Invalid(code ErrorCode, format string, args ...any) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err into a *ValidationError if it carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}

	return nil, false
}
