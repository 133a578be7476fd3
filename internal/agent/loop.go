package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinical-agent/internal/eventbus"
	"clinical-agent/internal/logger"
	"clinical-agent/internal/tool"
)

const exceptionTool = "_Exception"

// RunStart is the payload of eventbus.TopicRunStart.
type RunStart struct {
	Input string
}

// Result is the outcome of one run.
type Result struct {
	RunID  string
	Input  string
	Output string

	// IntermediateSteps is only filled when ReturnIntermediateSteps is set.
	IntermediateSteps []Step

	// Stopped is true when the run ended on a limit rather than a final answer.
	Stopped    bool
	Iterations int
	Duration   time.Duration
}

// Run answers input and returns only the final text.
func (e *Executor) Run(ctx context.Context, input string) (string, error) {
	res, err := e.Call(ctx, input)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Call runs the loop: think → act → observe, repeating until the agent
// returns a final answer or a limit is reached.
func (e *Executor) Call(ctx context.Context, input string) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()
	log := e.log.With(zap.String("run_id", runID))
	ctx = logger.ContextWithLogger(ctx, log)

	e.cfg.Bus.Publish(eventbus.TopicRunStart, runID, RunStart{Input: input})
	e.trace(log, "run started", zap.String("input", input))

	var steps []Step
	iterations := 0
	for e.shouldContinue(iterations, time.Since(start)) {
		if err := ctx.Err(); err != nil {
			e.cfg.Bus.Publish(eventbus.TopicError, runID, err)
			return nil, err
		}

		// Think
		action, finish, err := e.agent.Plan(ctx, e.trimmed(steps), input)
		if err != nil {
			var parseErr *OutputParserError
			if !errors.As(err, &parseErr) || !e.handleParsingErrors {
				e.cfg.Bus.Publish(eventbus.TopicError, runID, err)
				return nil, err
			}

			obs := parseErr.Observation
			if obs == "" {
				obs = invalidResponseObservation
			}
			step := Step{
				Action:      Action{Tool: exceptionTool, ToolInput: obs, Log: parseErr.LLMOutput},
				Observation: obs,
			}
			steps = append(steps, step)
			iterations++
			e.cfg.Bus.Publish(eventbus.TopicParseError, runID, step)
			e.trace(log, "unparseable model output", zap.String("output", parseErr.LLMOutput))
			continue
		}

		if finish != nil {
			e.cfg.Bus.Publish(eventbus.TopicAgentFinish, runID, *finish)
			e.trace(log, "final answer", zap.String("output", finish.Output), zap.Int("iterations", iterations))
			return e.result(runID, input, *finish, steps, false, iterations, start), nil
		}

		// Act
		e.cfg.Bus.Publish(eventbus.TopicAgentAction, runID, *action)
		e.trace(log, "action", zap.String("tool", action.Tool), zap.String("input", action.ToolInput), zap.String("log", action.Log))
		obs := e.runTool(ctx, *action)

		// Observe
		step := Step{Action: *action, Observation: obs}
		steps = append(steps, step)
		iterations++
		e.cfg.Bus.Publish(eventbus.TopicToolResult, runID, step)
		e.trace(log, "observation", zap.String("tool", action.Tool), zap.String("observation", obs))
	}

	finish, err := e.agent.ReturnStoppedResponse(ctx, e.cfg.EarlyStoppingMethod, e.trimmed(steps), input)
	if err != nil {
		e.cfg.Bus.Publish(eventbus.TopicError, runID, err)
		return nil, fmt.Errorf("early stopping: %w", err)
	}
	e.cfg.Bus.Publish(eventbus.TopicAgentStop, runID, *finish)
	log.Warn("run stopped before a final answer",
		zap.Int("iterations", iterations),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("method", string(e.cfg.EarlyStoppingMethod)))
	return e.result(runID, input, *finish, steps, true, iterations, start), nil
}

// runTool turns every tool outcome into an observation; failures are shown
// to the model rather than aborting the run.
func (e *Executor) runTool(ctx context.Context, action Action) string {
	t, ok := e.byName[action.Tool]
	if !ok {
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", action.Tool, e.toolNames())
	}

	out, err := t.Run(ctx, action.ToolInput)
	if err != nil {
		e.log.Debug("tool failed", zap.String("tool", action.Tool), zap.Error(err))
		return "Error: " + err.Error()
	}
	if e.maxObservation > 0 && len(out) > e.maxObservation {
		out = tool.Clip(out, e.maxObservation) + "\n... (truncated)"
	}
	return out
}

func (e *Executor) shouldContinue(iterations int, elapsed time.Duration) bool {
	if e.cfg.MaxIterations > 0 && iterations >= e.cfg.MaxIterations {
		return false
	}
	if e.cfg.MaxExecutionTime > 0 && elapsed >= e.cfg.MaxExecutionTime {
		return false
	}
	return true
}

// trimmed limits how many past steps the agent sees, not what is returned.
func (e *Executor) trimmed(steps []Step) []Step {
	if e.trimSteps > 0 && len(steps) > e.trimSteps {
		return steps[len(steps)-e.trimSteps:]
	}
	return steps
}

func (e *Executor) result(runID, input string, finish Finish, steps []Step, stopped bool, iterations int, start time.Time) *Result {
	res := &Result{
		RunID:      runID,
		Input:      input,
		Output:     finish.Output,
		Stopped:    stopped,
		Iterations: iterations,
		Duration:   time.Since(start),
	}
	if e.cfg.ReturnIntermediateSteps {
		res.IntermediateSteps = append([]Step(nil), steps...)
	}
	return res
}

// trace surfaces intermediate reasoning at info level when verbose, debug otherwise.
func (e *Executor) trace(log *zap.Logger, msg string, fields ...zap.Field) {
	if e.cfg.Verbose {
		log.Info(msg, fields...)
		return
	}
	log.Debug(msg, fields...)
}
