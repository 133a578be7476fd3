package agent

import (
	"context"
	"fmt"

	"clinical-agent/internal/llm"
)

// LLMChain binds a prompt template to a model.
type LLMChain struct {
	model  llm.Model
	prompt *PromptTemplate

	MaxTokens   int
	Temperature float64
}

// NewLLMChain creates a chain. The model handle is stored as given.
func NewLLMChain(model llm.Model, prompt *PromptTemplate) *LLMChain {
	return &LLMChain{model: model, prompt: prompt}
}

func (c *LLMChain) Model() llm.Model         { return c.model }
func (c *LLMChain) Prompt() *PromptTemplate { return c.prompt }

// Predict renders the prompt with vars and returns the model's text.
func (c *LLMChain) Predict(ctx context.Context, vars map[string]string, stop []string) (string, error) {
	if c.model == nil {
		return "", fmt.Errorf("llm chain has no model")
	}
	prompt, err := c.prompt.Format(vars)
	if err != nil {
		return "", err
	}

	gen, err := c.model.Generate(ctx, &llm.Request{
		Prompt:      prompt,
		Stop:        stop,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("llm error: %w", err)
	}
	return gen.Text, nil
}
