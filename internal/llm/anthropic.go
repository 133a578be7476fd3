package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicModel implements Model using the Anthropic Messages API.
type AnthropicModel struct {
	client       anthropic.Client
	defaultModel string
}

// AnthropicConfig holds configuration for the Anthropic model.
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewAnthropicModel creates a new Anthropic-backed model.
func NewAnthropicModel(cfg AnthropicConfig) *AnthropicModel {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5-20250514"
	}
	return &AnthropicModel{
		client:       anthropic.NewClient(opts...),
		defaultModel: model,
	}
}

func (m *AnthropicModel) Name() string { return "anthropic" }

func (m *AnthropicModel) Generate(ctx context.Context, req *Request) (*Generation, error) {
	model := req.Model
	if model == "" {
		model = m.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if len(req.Stop) > 0 {
		params.StopSequences = req.Stop
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(m.Name(), err)
	}

	gen := &Generation{
		StopReason: string(resp.StopReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}
	for _, block := range resp.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			gen.Text += b.Text
		}
	}
	gen.Text = EnforceStop(gen.Text, req.Stop)
	return gen, nil
}
