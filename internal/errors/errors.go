package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds used across the billing engine. Callers mark errors with one of
// these through the builder and test for them with the Is* helpers.
var (
	ErrNotFound                 = new(ErrCodeNotFound, "resource not found")
	ErrValidation               = new(ErrCodeValidation, "validation error")
	ErrDatabase                 = new(ErrCodeDatabase, "database error")
	ErrSystem                   = new(ErrCodeSystemError, "system error")
	ErrUnsupportedConfiguration = new(ErrCodeUnsupportedConfiguration, "unsupported service configuration")
	ErrInvalidArgument          = new(ErrCodeInvalidArgument, "invalid argument")
	ErrPolicyEvaluation         = new(ErrCodePolicyEvaluation, "policy evaluation failed")
	ErrSourceUnavailable        = new(ErrCodeSourceUnavailable, "metric source unavailable")
)

const (
	ErrCodeSystemError              = "system_error"
	ErrCodeNotFound                 = "not_found"
	ErrCodeValidation               = "validation_error"
	ErrCodeDatabase                 = "database_error"
	ErrCodeUnsupportedConfiguration = "unsupported_configuration"
	ErrCodeInvalidArgument          = "invalid_argument"
	ErrCodePolicyEvaluation         = "policy_evaluation_error"
	ErrCodeSourceUnavailable        = "source_unavailable"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is matches two InternalErrors by code
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnsupportedConfiguration checks if the error comes from a period/point/style
// combination the engine has no rule for
func IsUnsupportedConfiguration(err error) bool {
	return errors.Is(err, ErrUnsupportedConfiguration)
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsPolicyEvaluation checks if a match or metric policy failed on a sample
func IsPolicyEvaluation(err error) bool {
	return errors.Is(err, ErrPolicyEvaluation)
}

// IsSourceUnavailable checks if a metric read failed
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// GetHints returns the user facing hints attached to the error chain
func GetHints(err error) []string {
	return errors.GetAllHints(err)
}
