package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for common provider failures.
var (
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrContentBlocked     = errors.New("content blocked by safety filters")
	ErrAuthentication     = errors.New("authentication failed")
	ErrTimeout            = errors.New("request timeout")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrEmptyResponse      = errors.New("empty model response")
)

// Error wraps a provider failure with retryability information.
type Error struct {
	Kind       error // one of the sentinel errors above
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is match the sentinel kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

// IsRetryable reports whether the caller may retry the whole operation.
// The guardrail pipeline itself never retries; this is for outer callers.
func IsRetryable(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Retryable
	}
	return false
}
