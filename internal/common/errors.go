package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes. Setup and not-found errors are fatal for the invocation;
// the rest are recorded per document and never abort a batch.
const (
	CodeSetup        = "SETUP_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeDocProcess   = "DOCUMENT_PROCESSING_ERROR"
	CodeParse        = "PARSE_ERROR"
	CodeDelivery     = "DELIVERY_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewSetupError(message string, cause error) *AppError {
	return NewAppError(CodeSetup, message, cause)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, message, ErrNotFound)
}

func NewDocumentError(message string, cause error) *AppError {
	return NewAppError(CodeDocProcess, message, cause)
}

func NewParseError(message string, cause error) *AppError {
	return NewAppError(CodeParse, message, cause)
}

func NewDeliveryError(message string, cause error) *AppError {
	return NewAppError(CodeDelivery, message, cause)
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code string) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
