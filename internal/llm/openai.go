package llm

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIModel implements Model using the OpenAI chat completions API.
// Also works with compatible APIs (Ollama, LM Studio, vLLM, OpenRouter) via BaseURL.
type OpenAIModel struct {
	client       openai.Client
	defaultModel string
}

// OpenAIConfig holds configuration for the OpenAI model.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAIModel creates a new OpenAI-backed model.
func NewOpenAIModel(cfg OpenAIConfig) *OpenAIModel {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIModel{
		client:       openai.NewClient(opts...),
		defaultModel: model,
	}
}

func (m *OpenAIModel) Name() string { return "openai" }

// Generate sends the prompt as a single user message. Stop sequences are
// enforced on the returned text rather than sent upstream, since not every
// compatible server honors them.
func (m *OpenAIModel) Generate(ctx context.Context, req *Request) (*Generation, error) {
	model := req.Model
	if model == "" {
		model = m.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classify(m.Name(), err)
	}

	gen := &Generation{
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		gen.Text = EnforceStop(choice.Message.Content, req.Stop)
		gen.StopReason = string(choice.FinishReason)
	}
	return gen, nil
}
