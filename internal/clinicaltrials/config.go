package clinicaltrials

import (
	"time"

	"clinical-agent/internal/agent"
	"clinical-agent/internal/config"
	"clinical-agent/internal/tool"
)

// OptionsFromConfig maps the agent and requests sections of cfg onto
// Options. Runtime collaborators (bus, logger, cache, loader) are left for
// the caller to set.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		RequestOptions: tool.RequestOptions{
			Headers:          cfg.Requests.Headers,
			Timeout:          time.Duration(cfg.Requests.TimeoutSecs) * time.Second,
			RetryCount:       cfg.Requests.RetryCount,
			MaxResponseBytes: cfg.Requests.MaxResponseBytes,
			UserAgent:        cfg.Requests.UserAgent,
			CacheTTL:         time.Duration(cfg.Cache.TTLSecs) * time.Second,
		},
		Verbose:                 cfg.Agent.Verbose,
		ReturnIntermediateSteps: cfg.Agent.ReturnIntermediateSteps,
		MaxIterations:           cfg.Agent.MaxIterations,
		MaxExecutionTime:        time.Duration(cfg.Agent.MaxExecutionTimeSecs) * time.Second,
		EarlyStoppingMethod:     agent.EarlyStoppingMethod(cfg.Agent.EarlyStoppingMethod),
	}

	extra := map[string]any{}
	if cfg.Agent.HandleParsingErrors {
		extra[agent.ExtraHandleParsingErrors] = true
	}
	if cfg.Agent.MaxObservationChars > 0 {
		extra[agent.ExtraMaxObservationChars] = cfg.Agent.MaxObservationChars
	}
	if len(extra) > 0 {
		opts.ExecutorExtra = extra
	}
	return opts
}
