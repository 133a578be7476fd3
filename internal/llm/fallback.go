package llm

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
)

// FallbackModel tries models in order, falling back on retryable errors.
type FallbackModel struct {
	models []Model
	log    *zap.Logger
}

// NewFallbackModel creates a model chain. The first model is primary.
func NewFallbackModel(log *zap.Logger, models ...Model) *FallbackModel {
	if log == nil {
		log = zap.NewNop()
	}
	return &FallbackModel{models: models, log: log.Named("fallback")}
}

func (f *FallbackModel) Name() string {
	if len(f.models) > 0 {
		return f.models[0].Name() + "+fallback"
	}
	return "fallback"
}

func (f *FallbackModel) Generate(ctx context.Context, req *Request) (*Generation, error) {
	if len(f.models) == 0 {
		return nil, &ModelError{Type: ErrorInvalidInput, Message: "fallback chain has no models"}
	}
	var lastErr error
	for _, m := range f.models {
		gen, err := m.Generate(ctx, req)
		if err == nil {
			return gen, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
		f.log.Warn("model failed, trying next", zap.String("model", m.Name()), zap.Error(err))
	}
	return nil, lastErr
}

// Close closes every model in the chain that holds a client.
func (f *FallbackModel) Close() error {
	var errs []error
	for _, m := range f.models {
		if c, ok := m.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// isRetryable returns true for errors that warrant trying a different model.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		return true
	}
	switch modelErr.Type {
	case ErrorAuth, ErrorInvalidInput:
		return false
	default:
		return true
	}
}
