package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	"clinical-agent/internal/config"
)

// NewModel creates a model from config. No request is sent.
func NewModel(ctx context.Context, cfg config.LLMConfig) (Model, error) {
	var m Model
	switch cfg.Provider {
	case "openai", "openrouter", "local":
		m = NewOpenAIModel(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "anthropic":
		m = NewAnthropicModel(AnthropicConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "gemini":
		gm, err := NewGeminiModel(ctx, GeminiConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		m = gm
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}

	return WithSampling(m, Sampling{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     time.Duration(cfg.TimeoutSecs) * time.Second,
	}), nil
}

// Sampling holds per-model defaults applied to requests that leave them unset.
type Sampling struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type sampledModel struct {
	Model
	sampling Sampling
}

// WithSampling wraps m so that requests without MaxTokens or Temperature get
// the configured values, and each call is bounded by Timeout when set.
func WithSampling(m Model, s Sampling) Model {
	if s == (Sampling{}) {
		return m
	}
	return &sampledModel{Model: m, sampling: s}
}

func (m *sampledModel) Generate(ctx context.Context, req *Request) (*Generation, error) {
	r := *req
	if r.MaxTokens <= 0 {
		r.MaxTokens = m.sampling.MaxTokens
	}
	if r.Temperature <= 0 {
		r.Temperature = m.sampling.Temperature
	}
	if m.sampling.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.sampling.Timeout)
		defer cancel()
	}
	return m.Model.Generate(ctx, &r)
}

// Close releases the wrapped model's client, if it holds one.
func (m *sampledModel) Close() error {
	if c, ok := m.Model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
