package llm

import (
	"context"
	"errors"
	"strings"
)

// classify maps a backend error onto an ErrorType. SDK errors are matched on
// their rendered status text since each SDK exposes a different error type.
func classify(backend string, err error) *ModelError {
	msg := err.Error()
	lower := strings.ToLower(msg)
	modelErr := &ModelError{Err: err, Message: backend + " request failed"}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		modelErr.Type = ErrorTimeout
	case strings.Contains(lower, "401") || strings.Contains(lower, "403") ||
		strings.Contains(lower, "unauthorized") || strings.Contains(lower, "authentication"):
		modelErr.Type = ErrorAuth
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "rate_limit"):
		modelErr.Type = ErrorRateLimit
	case strings.Contains(lower, "400") || strings.Contains(lower, "invalid"):
		modelErr.Type = ErrorInvalidInput
	case strings.Contains(lower, "500") || strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "overloaded"):
		modelErr.Type = ErrorServerError
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		modelErr.Type = ErrorTimeout
	case strings.Contains(lower, "connection") || strings.Contains(lower, "dns") || strings.Contains(lower, "refused"):
		modelErr.Type = ErrorNetwork
	default:
		modelErr.Type = ErrorUnknown
	}
	return modelErr
}
