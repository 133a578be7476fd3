package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel implements Model using Google's Gemini API.
type GeminiModel struct {
	client       *genai.Client
	defaultModel string
}

// GeminiConfig holds configuration for the Gemini model.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiModel creates a Gemini client. The client is created eagerly but
// no request is sent until Generate is called.
func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiModel{client: client, defaultModel: model}, nil
}

func (m *GeminiModel) Name() string { return "gemini" }

func (m *GeminiModel) Generate(ctx context.Context, req *Request) (*Generation, error) {
	name := req.Model
	if name == "" {
		name = m.defaultModel
	}

	// GenerativeModel carries its settings as fields; one handle per call.
	gm := m.client.GenerativeModel(name)
	if len(req.Stop) > 0 {
		gm.StopSequences = req.Stop
	}
	if req.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Temperature > 0 {
		gm.SetTemperature(float32(req.Temperature))
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, classify(m.Name(), err)
	}

	gen := &Generation{}
	if resp.UsageMetadata != nil {
		gen.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var sb strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
		gen.Text = EnforceStop(sb.String(), req.Stop)
		gen.StopReason = resp.Candidates[0].FinishReason.String()
	}
	return gen, nil
}

// Close releases the underlying gRPC connection.
func (m *GeminiModel) Close() error {
	return m.client.Close()
}
