package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	name  string
	text  string
	err   error
	calls int
	last  Request
}

func (m *stubModel) Name() string { return m.name }

func (m *stubModel) Generate(_ context.Context, req *Request) (*Generation, error) {
	m.calls++
	m.last = *req
	if m.err != nil {
		return nil, m.err
	}
	return &Generation{Text: m.text}, nil
}

func TestFallbackRetryable(t *testing.T) {
	primary := &stubModel{name: "primary", err: &ModelError{Type: ErrorRateLimit, Message: "slow down"}}
	secondary := &stubModel{name: "secondary", text: "ok"}

	m := NewFallbackModel(nil, primary, secondary)
	gen, err := m.Generate(context.Background(), &Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", gen.Text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, "primary+fallback", m.Name())
}

func TestFallbackNotRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "auth", err: &ModelError{Type: ErrorAuth, Message: "bad key"}},
		{name: "invalid input", err: &ModelError{Type: ErrorInvalidInput, Message: "too long"}},
		{name: "canceled", err: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &stubModel{name: "primary", err: tt.err}
			secondary := &stubModel{name: "secondary", text: "ok"}

			_, err := NewFallbackModel(nil, primary, secondary).Generate(context.Background(), &Request{})
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 0, secondary.calls)
		})
	}
}

func TestFallbackAllFail(t *testing.T) {
	last := errors.New("connection refused")
	m := NewFallbackModel(nil,
		&stubModel{name: "a", err: errors.New("boom")},
		&stubModel{name: "b", err: last},
	)

	_, err := m.Generate(context.Background(), &Request{})
	assert.ErrorIs(t, err, last)
}

func TestFallbackEmpty(t *testing.T) {
	_, err := NewFallbackModel(nil).Generate(context.Background(), &Request{})
	var modelErr *ModelError
	require.True(t, errors.As(err, &modelErr))
	assert.Equal(t, ErrorInvalidInput, modelErr.Type)
}
