package agent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"clinical-agent/internal/eventbus"
	"clinical-agent/internal/llm"
	"clinical-agent/internal/logger"
	"clinical-agent/internal/tool"
)

// EarlyStoppingMethod decides what a run returns when it hits a limit.
type EarlyStoppingMethod string

const (
	// EarlyStoppingForce returns StoppedOutput immediately.
	EarlyStoppingForce EarlyStoppingMethod = "force"
	// EarlyStoppingGenerate asks the model for one last final answer.
	EarlyStoppingGenerate EarlyStoppingMethod = "generate"
)

const (
	// DefaultMaxIterations applies when ExecutorConfig.MaxIterations is zero.
	DefaultMaxIterations = 15
	// NoIterationCap turns the step cap off. Any negative value does the same.
	NoIterationCap = -1
)

// Keys accepted in ExecutorConfig.Extra.
const (
	ExtraHandleParsingErrors   = "handle_parsing_errors"
	ExtraTrimIntermediateSteps = "trim_intermediate_steps"
	ExtraMaxObservationChars   = "max_observation_chars"
)

// ExecutorConfig holds the run-loop options.
type ExecutorConfig struct {
	Verbose                 bool
	ReturnIntermediateSteps bool

	// MaxIterations caps agent steps per run. Zero means DefaultMaxIterations,
	// NoIterationCap means no cap.
	MaxIterations int

	// MaxExecutionTime caps wall time per run, checked between steps. Zero means no cap.
	MaxExecutionTime time.Duration

	EarlyStoppingMethod EarlyStoppingMethod

	// Extra carries forward-compatible options keyed by the Extra* constants.
	Extra map[string]any

	Bus    *eventbus.Bus
	Logger *zap.Logger
}

// Executor drives an Agent: plan, run the chosen tool, feed the observation
// back, until a final answer or a limit.
type Executor struct {
	agent  Agent
	tools  []tool.Tool
	byName map[string]tool.Tool
	cfg    ExecutorConfig
	log    *zap.Logger

	handleParsingErrors bool
	trimSteps           int
	maxObservation      int
}

// NewExecutor validates the configuration and binds the agent to its tools.
// The agent's allowed tools must name exactly the provided tools.
func NewExecutor(a Agent, tools []tool.Tool, cfg ExecutorConfig) (*Executor, error) {
	if a == nil {
		return nil, fmt.Errorf("executor requires an agent")
	}

	switch cfg.EarlyStoppingMethod {
	case "":
		cfg.EarlyStoppingMethod = EarlyStoppingForce
	case EarlyStoppingForce, EarlyStoppingGenerate:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEarlyStopping, cfg.EarlyStoppingMethod)
	}
	switch {
	case cfg.MaxIterations == 0:
		cfg.MaxIterations = DefaultMaxIterations
	case cfg.MaxIterations < 0:
		cfg.MaxIterations = NoIterationCap
	}

	byName := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		if _, dup := byName[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate tool name: %s", t.Name())
		}
		byName[t.Name()] = t
	}
	if err := matchTools(a.AllowedTools(), byName); err != nil {
		return nil, err
	}

	e := &Executor{
		agent:  a,
		tools:  append([]tool.Tool(nil), tools...),
		byName: byName,
		cfg:    cfg,
		log:    logger.OrNop(cfg.Logger).Named("agent"),
	}
	if err := e.applyExtra(cfg.Extra); err != nil {
		return nil, err
	}
	return e, nil
}

func matchTools(allowed []string, byName map[string]tool.Tool) error {
	seen := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		if _, ok := byName[name]; !ok {
			return fmt.Errorf("%w: %q is allowed but not provided", ErrToolMismatch, name)
		}
		seen[name] = true
	}
	for name := range byName {
		if !seen[name] {
			return fmt.Errorf("%w: %q is provided but not allowed", ErrToolMismatch, name)
		}
	}
	return nil
}

func (e *Executor) applyExtra(extra map[string]any) error {
	for key, val := range extra {
		switch key {
		case ExtraHandleParsingErrors:
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("%w: %s wants bool, got %T", ErrInvalidOption, key, val)
			}
			e.handleParsingErrors = b
		case ExtraTrimIntermediateSteps:
			n, ok := val.(int)
			if !ok || n < 0 {
				return fmt.Errorf("%w: %s wants a non-negative int, got %v", ErrInvalidOption, key, val)
			}
			e.trimSteps = n
		case ExtraMaxObservationChars:
			n, ok := val.(int)
			if !ok || n < 0 {
				return fmt.Errorf("%w: %s wants a non-negative int, got %v", ErrInvalidOption, key, val)
			}
			e.maxObservation = n
		default:
			return fmt.Errorf("%w: %s", ErrUnknownOption, key)
		}
	}
	return nil
}

// Agent returns the reasoning agent.
func (e *Executor) Agent() Agent { return e.agent }

// Tools returns the registered tools.
func (e *Executor) Tools() []tool.Tool {
	return append([]tool.Tool(nil), e.tools...)
}

// Config returns the configuration the executor was built with.
func (e *Executor) Config() ExecutorConfig { return e.cfg }

// HandleParsingErrors reports whether unparseable model output is fed back
// as an observation instead of failing the run.
func (e *Executor) HandleParsingErrors() bool { return e.handleParsingErrors }

// Model returns the model handle bound into the agent, or nil if the agent
// does not expose one.
func (e *Executor) Model() llm.Model {
	if m, ok := e.agent.(interface{ Model() llm.Model }); ok {
		return m.Model()
	}
	return nil
}

func (e *Executor) toolNames() string {
	names := make([]string, 0, len(e.byName))
	for name := range e.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
