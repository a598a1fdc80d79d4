package llm

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		code      ErrorCode
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, ErrCodeUnauthorized, false},
		{"forbidden", http.StatusForbidden, ErrCodeUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, ErrCodeRateLimit, true},
		{"server error", http.StatusInternalServerError, ErrCodeServerError, true},
		{"bad gateway", http.StatusBadGateway, ErrCodeServerError, true},
		{"service unavailable", http.StatusServiceUnavailable, ErrCodeServerError, true},
		{"request timeout", http.StatusRequestTimeout, ErrCodeServerError, true},
		{"bad request", http.StatusBadRequest, ErrCodeValidationError, false},
		{"not found", http.StatusNotFound, ErrCodeValidationError, false},
		{"unprocessable", http.StatusUnprocessableEntity, ErrCodeValidationError, false},
		{"teapot", http.StatusTeapot, ErrCodeValidationError, false},
		{"unknown zero", 0, ErrCodeUnknown, false},
		{"unknown 3xx", http.StatusFound, ErrCodeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.status, "", 0)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.status, err.Status)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestClassify_RetryAfterRidesOn429(t *testing.T) {
	err := Classify(http.StatusTooManyRequests, "slow down", 30)
	assert.Equal(t, ErrCodeRateLimit, err.Code)
	assert.Equal(t, 30, err.RetryAfter)
	assert.Equal(t, "slow down", err.Message)

	// other statuses never carry a retry hint
	err = Classify(http.StatusInternalServerError, "", 30)
	assert.Zero(t, err.RetryAfter)
}

func TestClassify_KeepsProviderMessage(t *testing.T) {
	err := Classify(http.StatusUnauthorized, "bad key", 0)
	assert.Equal(t, "bad key", err.Message)

	err = Classify(http.StatusUnauthorized, "", 0)
	assert.Equal(t, "Unauthorized", err.Message)
}
