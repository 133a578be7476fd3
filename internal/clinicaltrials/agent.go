package clinicaltrials

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinical-agent/internal/agent"
	"clinical-agent/internal/eventbus"
	"clinical-agent/internal/llm"
	"clinical-agent/internal/tool"
)

// ToolName is the name the model uses to call the ClinicalTrials.gov tool.
const ToolName = "clinical_http_requests"

// DefaultPromptPrefix opens the reasoning prompt.
const DefaultPromptPrefix = `Answer the following questions about clinical studies as best you can, using the ClinicalTrials.gov API. Build the request URL yourself from the documentation below. You have access to the following tools:`

// Options configures NewAgent.
type Options struct {
	// RequestOptions configures the HTTP transport behind the tool.
	RequestOptions tool.RequestOptions

	Verbose                 bool
	ReturnIntermediateSteps bool

	// MaxIterations caps agent steps per run. Zero means 15;
	// agent.NoIterationCap turns the cap off.
	MaxIterations int

	// MaxExecutionTime caps wall time per run. Zero means no cap.
	MaxExecutionTime time.Duration

	// EarlyStoppingMethod is "force" or "generate". Empty means "force".
	EarlyStoppingMethod agent.EarlyStoppingMethod

	// ExecutorExtra is passed to the executor; see the agent.Extra* keys.
	ExecutorExtra map[string]any

	// PromptPrefix and PromptSuffix replace the reasoning prompt's opening
	// and closing sections. The suffix must reference {{.input}} and
	// {{.agent_scratchpad}}.
	PromptPrefix string
	PromptSuffix string

	// Loader resolves the HTTP requests tool. Nil means tool.DefaultRegistry().
	Loader tool.Loader

	Bus    *eventbus.Bus
	Logger *zap.Logger
}

// DefaultOptions returns the options used when NewAgent gets nil.
func DefaultOptions() Options {
	return Options{
		MaxIterations:       agent.DefaultMaxIterations,
		EarlyStoppingMethod: agent.EarlyStoppingForce,
	}
}

// NewAgent builds an executor that answers questions by querying
// ClinicalTrials.gov through a single HTTP tool. It sends no request; the
// model is stored as given. A nil opts means DefaultOptions().
func NewAgent(model llm.Model, opts *Options) (*agent.Executor, error) {
	if opts == nil {
		d := DefaultOptions()
		opts = &d
	}

	loader := opts.Loader
	if loader == nil {
		loader = tool.DefaultRegistry()
	}
	reqOpts := opts.RequestOptions
	if reqOpts.Logger == nil {
		reqOpts.Logger = opts.Logger
	}

	loaded, err := loader.Load(tool.NameHTTPRequests, reqOpts)
	if err != nil {
		if !errors.Is(err, tool.ErrDependencyMissing) {
			err = &tool.DependencyMissingError{Dependency: tool.NameHTTPRequests, Err: err}
		}
		return nil, err
	}
	if len(loaded) == 0 {
		return nil, &tool.DependencyMissingError{Dependency: tool.NameHTTPRequests, Err: errors.New("loader returned no tools")}
	}

	clinical := tool.NewFunc(ToolName, ToolDescription, loaded[0].Run)
	tools := []tool.Tool{clinical}

	prefix := opts.PromptPrefix
	if prefix == "" {
		prefix = DefaultPromptPrefix
	}
	prompt, err := agent.CreatePrompt(tools, prefix, opts.PromptSuffix, "")
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	zeroShot := agent.NewZeroShotAgent(agent.NewLLMChain(model, prompt), []string{clinical.Name()})

	return agent.NewExecutor(zeroShot, tools, agent.ExecutorConfig{
		Verbose:                 opts.Verbose,
		ReturnIntermediateSteps: opts.ReturnIntermediateSteps,
		MaxIterations:           opts.MaxIterations,
		MaxExecutionTime:        opts.MaxExecutionTime,
		EarlyStoppingMethod:     opts.EarlyStoppingMethod,
		Extra:                   opts.ExecutorExtra,
		Bus:                     opts.Bus,
		Logger:                  opts.Logger,
	})
}
