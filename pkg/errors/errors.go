package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// CustomizedError is the service-internal error carrier. It keeps a
// trace chain of the call sites that touched the error, the HTTP code
// the response layer should emit, and an i18n message key.
type CustomizedError struct {
	cause   error
	message string
	trace   []string
	code    int
}

func New(trace, message string, err error) *CustomizedError {
	return &CustomizedError{
		cause:   err,
		message: message,
		trace:   []string{trace},
		code:    http.StatusInternalServerError,
	}
}

func (e *CustomizedError) Code(c int) *CustomizedError {
	e.code = c
	return e
}

func (e *CustomizedError) GetCode() int {
	return e.code
}

func (e *CustomizedError) Unwrap() error {
	return e.cause
}

// Message returns the i18n key (or literal message) for the client.
func (e *CustomizedError) Message() string {
	if e.message == "" && e.cause != nil {
		return e.cause.Error()
	}
	return e.message
}

func (e *CustomizedError) Error() string {
	return fmt.Sprintf(`{"trace":"%s","code":%d,"msg":"%s","error":"%v"}`,
		strings.Join(e.trace, "->"), e.code, e.message, e.cause)
}

// Trace appends a call-site marker to an existing CustomizedError, or
// wraps a foreign error without losing its text.
func Trace(trace string, err error) *CustomizedError {
	if ce, ok := err.(*CustomizedError); ok {
		ce.trace = append(ce.trace, trace)
		return ce
	}
	return &CustomizedError{
		cause:   err,
		message: err.Error(),
		trace:   []string{trace},
		code:    http.StatusInternalServerError,
	}
}
