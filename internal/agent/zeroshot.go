package agent

import (
	"context"
	"strings"

	"clinical-agent/internal/llm"
)

const (
	observationPrefix = "Observation: "
	thoughtPrefix     = "Thought:"

	// StoppedOutput is the "force" early-stopping answer.
	StoppedOutput = "Agent stopped due to iteration limit or time limit."

	finalPassThought = "\n\nI now need to return a final answer based on the previous steps:"
)

// Agent decides the next step of a run from the steps taken so far.
type Agent interface {
	// Plan returns either the next action or the final answer.
	Plan(ctx context.Context, steps []Step, input string) (*Action, *Finish, error)

	// ReturnStoppedResponse produces an answer once the executor hits an
	// iteration or time limit.
	ReturnStoppedResponse(ctx context.Context, method EarlyStoppingMethod, steps []Step, input string) (*Finish, error)

	// AllowedTools lists the tool names the agent may choose.
	AllowedTools() []string
}

// ZeroShotAgent is a ReAct agent that picks tools from their descriptions alone.
type ZeroShotAgent struct {
	chain        *LLMChain
	allowedTools []string
	stop         []string
}

var _ Agent = (*ZeroShotAgent)(nil)

// NewZeroShotAgent creates an agent restricted to allowedTools.
func NewZeroShotAgent(chain *LLMChain, allowedTools []string) *ZeroShotAgent {
	allowed := make([]string, len(allowedTools))
	copy(allowed, allowedTools)
	return &ZeroShotAgent{
		chain:        chain,
		allowedTools: allowed,
		stop:         []string{"\n" + strings.TrimSpace(observationPrefix), "\n\t" + strings.TrimSpace(observationPrefix)},
	}
}

func (a *ZeroShotAgent) AllowedTools() []string {
	out := make([]string, len(a.allowedTools))
	copy(out, a.allowedTools)
	return out
}

// Model returns the model handle bound into the agent's chain.
func (a *ZeroShotAgent) Model() llm.Model { return a.chain.Model() }

// Chain returns the agent's prompt/model binding.
func (a *ZeroShotAgent) Chain() *LLMChain { return a.chain }

func (a *ZeroShotAgent) Plan(ctx context.Context, steps []Step, input string) (*Action, *Finish, error) {
	text, err := a.chain.Predict(ctx, a.inputs(steps, input, ""), a.stop)
	if err != nil {
		return nil, nil, err
	}
	return ParseOutput(text)
}

func (a *ZeroShotAgent) ReturnStoppedResponse(ctx context.Context, method EarlyStoppingMethod, steps []Step, input string) (*Finish, error) {
	switch method {
	case EarlyStoppingForce, "":
		return &Finish{Output: StoppedOutput}, nil
	case EarlyStoppingGenerate:
		text, err := a.chain.Predict(ctx, a.inputs(steps, input, finalPassThought), a.stop)
		if err != nil {
			return nil, err
		}
		if _, finish, err := ParseOutput(text); err == nil && finish != nil {
			return finish, nil
		}
		return &Finish{Output: text, Log: text}, nil
	default:
		return nil, ErrUnknownEarlyStopping
	}
}

func (a *ZeroShotAgent) inputs(steps []Step, input, extra string) map[string]string {
	return map[string]string{
		VarInput:           input,
		VarAgentScratchpad: scratchpad(steps) + extra,
	}
}

// scratchpad replays previous steps so the model continues after "Thought:".
func scratchpad(steps []Step) string {
	var sb strings.Builder
	for _, s := range steps {
		sb.WriteString(s.Action.Log)
		sb.WriteString("\n")
		sb.WriteString(observationPrefix)
		sb.WriteString(s.Observation)
		sb.WriteString("\n")
		sb.WriteString(thoughtPrefix)
	}
	return sb.String()
}
