package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"clinical-agent/internal/llm"
	"clinical-agent/internal/tool"
)

// scriptedModel replays canned completions and records every request.
type scriptedModel struct {
	mu       sync.Mutex
	replies  []string
	requests []llm.Request
	err      error
	delay    time.Duration
}

func newScriptedModel(replies ...string) *scriptedModel {
	return &scriptedModel{replies: replies}
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Generate(ctx context.Context, req *llm.Request) (*llm.Generation, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, *req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return nil, errors.New("script exhausted")
	}
	text := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return &llm.Generation{Text: text}, nil
}

func (m *scriptedModel) prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	for i, r := range m.requests {
		out[i] = r.Prompt
	}
	return out
}

type recordingTool struct {
	name   string
	output string
	err    error

	mu     sync.Mutex
	inputs []string
}

func (t *recordingTool) Name() string        { return t.name }
func (t *recordingTool) Description() string { return "fetches " + t.name }

func (t *recordingTool) Run(_ context.Context, input string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputs = append(t.inputs, input)
	return t.output, t.err
}

func newTestExecutor(model llm.Model, tools []tool.Tool, cfg ExecutorConfig) (*Executor, error) {
	prompt, err := CreatePrompt(tools, "", "", "")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return NewExecutor(NewZeroShotAgent(NewLLMChain(model, prompt), names), tools, cfg)
}
