package memory

import (
	"context"
	"time"

	"clinical-agent/internal/agent"
)

// Run is one recorded question/answer exchange with the steps that led to it.
type Run struct {
	ID        string
	Query     string
	Answer    string
	Steps     []agent.Step
	Stopped   bool
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Store is the interface for persistent run history.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	Close() error
}
