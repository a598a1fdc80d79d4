package llm

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodeRateLimit       ErrorCode = "RATE_LIMIT"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeServerError     ErrorCode = "SERVER_ERROR"
	ErrCodeValidationError ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidJSON     ErrorCode = "INVALID_JSON"
	ErrCodeMissingAPIKey   ErrorCode = "MISSING_API_KEY"
	ErrCodeUnknown         ErrorCode = "UNKNOWN"
)

// Error is the classified provider failure surfaced to callers. The
// Retryable flag tells the caller whether resending the same request
// after backoff is safe; the relay itself never retries.
type Error struct {
	Message    string
	Status     int
	Code       ErrorCode
	Retryable  bool
	RetryAfter int
	cause      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("llm: %s (code=%s status=%d retryable=%t)", e.Message, e.Code, e.Status, e.Retryable)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(message string, status int, code ErrorCode, retryable bool, cause error) *Error {
	return &Error{
		Message:   message,
		Status:    status,
		Code:      code,
		Retryable: retryable,
		cause:     cause,
	}
}

// Classify maps a provider HTTP status to the error taxonomy. Pure
// function of the status code; retryAfter rides along on 429s.
func Classify(status int, message string, retryAfter int) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(defaultMsg(message, "Unauthorized"), status, ErrCodeUnauthorized, false, nil)
	case status == http.StatusTooManyRequests:
		err := newError(defaultMsg(message, "Rate limited"), status, ErrCodeRateLimit, true, nil)
		err.RetryAfter = retryAfter
		return err
	case status >= http.StatusInternalServerError || status == http.StatusRequestTimeout:
		return newError(defaultMsg(message, "Provider unavailable"), status, ErrCodeServerError, true, nil)
	case status >= http.StatusBadRequest:
		return newError(defaultMsg(message, "Validation failed"), status, ErrCodeValidationError, false, nil)
	default:
		return newError(defaultMsg(message, "Unexpected provider error"), status, ErrCodeUnknown, false, nil)
	}
}

func defaultMsg(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
