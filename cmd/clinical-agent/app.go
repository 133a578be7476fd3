package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clinical-agent/internal/agent"
	"clinical-agent/internal/clinicaltrials"
	"clinical-agent/internal/config"
	"clinical-agent/internal/eventbus"
	"clinical-agent/internal/llm"
	"clinical-agent/internal/logger"
	"clinical-agent/internal/memory"
	"clinical-agent/internal/secrets"
	"clinical-agent/internal/tool"
)

const historyFile = "history.db"

// App holds the long-lived collaborators shared by the commands.
type App struct {
	cfg       *config.Config
	cfgLoader *config.Loader
	dir       string
	log       *zap.Logger
	bus       *eventbus.Bus
	keyStore  *secrets.KeyStore
	store     memory.Store
	redis     *redis.Client
	model     llm.Model
}

// newApp loads configuration and opens nothing that needs the network.
func newApp(configPath string, verbose bool) (*App, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	var loader *config.Loader
	if configPath != "" {
		loader = config.NewLoaderAt(configPath)
	} else if loader, err = config.NewLoader(); err != nil {
		return nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", loader.FilePath(), err)
	}
	if verbose {
		cfg.Agent.Verbose = true
	}

	log, err := logger.New(cfg.Agent.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &App{
		cfg:       cfg,
		cfgLoader: loader,
		dir:       dir,
		log:       log,
		bus:       eventbus.New(),
		keyStore:  secrets.NewKeyStoreFromEnv(dir),
	}, nil
}

// resolveSecrets fills API keys from the environment or the key store.
func (a *App) resolveSecrets() error {
	if err := resolveLLMKey(a.keyStore, &a.cfg.LLM); err != nil {
		return err
	}
	if a.cfg.FallbackLLM != nil {
		if err := resolveLLMKey(a.keyStore, a.cfg.FallbackLLM); err != nil {
			a.log.Warn("fallback model disabled", zap.Error(err))
			a.cfg.FallbackLLM = nil
		}
	}
	return nil
}

func resolveLLMKey(ks *secrets.KeyStore, cfg *config.LLMConfig) error {
	if cfg.BaseURL != "" {
		if err := validateBaseURL(cfg.BaseURL); err != nil {
			return err
		}
	}
	cfg.APIKey = ks.ResolveAPIKey(cfg.Provider, cfg.APIKey)
	if cfg.APIKey != "" {
		return nil
	}
	env, ok := secrets.EnvVar(cfg.Provider)
	if !ok {
		return nil
	}
	return fmt.Errorf("no API key for provider %s: set %s or run `clinical-agent config set-key %s`",
		cfg.Provider, env, cfg.Provider)
}

// openHistory opens the run-history database unless history is disabled.
func (a *App) openHistory() error {
	if !a.cfg.History.Enabled || a.store != nil {
		return nil
	}
	path := a.cfg.History.DBPath
	if path == "" {
		path = filepath.Join(a.dir, historyFile)
	}
	store, err := memory.NewSQLiteStore(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	a.store = store
	return nil
}

func (a *App) newModel(ctx context.Context) (llm.Model, error) {
	primary, err := llm.NewModel(ctx, a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	if a.cfg.FallbackLLM == nil || a.cfg.FallbackLLM.Provider == "" {
		return primary, nil
	}

	fallback, err := llm.NewModel(ctx, *a.cfg.FallbackLLM)
	if err != nil {
		a.log.Warn("fallback model disabled", zap.Error(err))
		return primary, nil
	}
	return llm.NewFallbackModel(a.log, primary, fallback), nil
}

// newAgent wires model, cache and history into a clinical trials executor.
func (a *App) newAgent(ctx context.Context, opts clinicaltrials.Options) (*agent.Executor, error) {
	if err := a.resolveSecrets(); err != nil {
		return nil, err
	}
	model, err := a.newModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	a.model = model

	if a.cfg.Cache.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Cache.RedisAddr,
			Password: a.cfg.Cache.Password,
			DB:       a.cfg.Cache.DB,
		})
		opts.RequestOptions.Cache = tool.NewRedisCache(a.redis)
	}

	if err := a.openHistory(); err != nil {
		a.log.Warn("run history disabled", zap.Error(err))
	} else if a.store != nil {
		memory.NewRecorder(a.store, a.bus, a.log)
	}

	opts.Bus = a.bus
	opts.Logger = a.log
	return clinicaltrials.NewAgent(model, &opts)
}

// Close releases whatever the commands opened.
func (a *App) Close() {
	if c, ok := a.model.(io.Closer); ok {
		_ = c.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.log.Sync()
}

// validateBaseURL checks that a base URL is valid and uses http/https scheme.
func validateBaseURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("base URL must use http or https scheme, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL must have a host")
	}
	return nil
}
