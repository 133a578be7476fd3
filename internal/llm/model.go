package llm

import (
	"context"
	"strings"
)

// Model is the capability the reasoning agent needs from a language model:
// turn a prompt into text.
type Model interface {
	// Generate completes a single prompt and returns the generated text.
	Generate(ctx context.Context, req *Request) (*Generation, error)

	// Name returns the backend name (e.g. "openai", "anthropic").
	Name() string
}

// ModelError wraps an error with a classification for fallback logic.
type ModelError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// EnforceStop cuts text at the first occurrence of any stop sequence.
// Backends that ignore stop sequences still yield a single ReAct step this way.
func EnforceStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if i := strings.Index(text, s); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}
