package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"clinical-agent/internal/agent"
	"clinical-agent/internal/eventbus"
	"clinical-agent/internal/logger"
)

// Recorder listens on the executor's bus and saves each run when it ends.
type Recorder struct {
	store Store
	log   *zap.Logger

	mu      sync.Mutex
	pending map[string]*Run
}

// NewRecorder subscribes a recorder to bus.
func NewRecorder(store Store, bus *eventbus.Bus, log *zap.Logger) *Recorder {
	r := &Recorder{
		store:   store,
		log:     logger.OrNop(log).Named("history"),
		pending: make(map[string]*Run),
	}
	bus.SubscribeAll(r.handle)
	return r
}

func (r *Recorder) handle(ev eventbus.Event) {
	r.mu.Lock()
	run, ok := r.pending[ev.RunID]
	if ev.Topic == eventbus.TopicRunStart {
		start, _ := ev.Payload.(agent.RunStart)
		run = &Run{ID: ev.RunID, Query: start.Input, StartedAt: ev.Timestamp}
		r.pending[ev.RunID] = run
		r.mu.Unlock()
		return
	}
	if !ok {
		r.mu.Unlock()
		return
	}

	done := false
	switch ev.Topic {
	case eventbus.TopicToolResult, eventbus.TopicParseError:
		if step, ok := ev.Payload.(agent.Step); ok {
			run.Steps = append(run.Steps, step)
		}
	case eventbus.TopicAgentFinish, eventbus.TopicAgentStop:
		if finish, ok := ev.Payload.(agent.Finish); ok {
			run.Answer = finish.Output
		}
		run.Stopped = ev.Topic == eventbus.TopicAgentStop
		done = true
	case eventbus.TopicError:
		if err, ok := ev.Payload.(error); ok {
			run.Error = err.Error()
		}
		done = true
	}
	if done {
		delete(r.pending, ev.RunID)
		run.Duration = ev.Timestamp.Sub(run.StartedAt)
	}
	r.mu.Unlock()

	if done {
		r.save(run)
	}
}

func (r *Recorder) save(run *Run) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.SaveRun(ctx, run); err != nil {
		r.log.Warn("failed to save run", zap.String("run_id", run.ID), zap.Error(err))
	}
}
