package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configDir  = ".clinical-agent"
	configFile = "config.yaml"
	envPrefix  = "CLINICAL_AGENT"
)

// Loader manages reading and writing the config file. Values from the
// environment (CLINICAL_AGENT_LLM_PROVIDER, ...) override the file.
type Loader struct {
	mu       sync.RWMutex
	config   *Config
	filePath string
}

// NewLoader creates a loader that stores config in ~/.clinical-agent/config.yaml.
func NewLoader() (*Loader, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Loader{filePath: filepath.Join(dir, configFile)}, nil
}

// NewLoaderAt creates a loader for an explicit file path.
func NewLoaderAt(path string) *Loader {
	return &Loader{filePath: path}
}

// Dir returns the application directory under the user's home.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

// Load reads the config. A missing file yields defaults plus env overrides.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Defaults())

	if _, err := os.Stat(l.filePath); err == nil {
		v.SetConfigFile(l.filePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", l.filePath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	l.config = cfg
	return cfg, nil
}

// Save writes cfg to disk as YAML.
func (l *Loader) Save(cfg *Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.filePath), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	l.config = cfg
	return os.WriteFile(l.filePath, data, 0600)
}

// Get returns the currently loaded config (or defaults if not loaded yet).
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.config == nil {
		return Defaults()
	}
	return l.config
}

// FilePath returns the config file path.
func (l *Loader) FilePath() string {
	return l.filePath
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.timeout_secs", d.LLM.TimeoutSecs)

	v.SetDefault("agent.max_iterations", d.Agent.MaxIterations)
	v.SetDefault("agent.max_execution_time_secs", d.Agent.MaxExecutionTimeSecs)
	v.SetDefault("agent.early_stopping_method", d.Agent.EarlyStoppingMethod)
	v.SetDefault("agent.verbose", d.Agent.Verbose)
	v.SetDefault("agent.return_intermediate_steps", d.Agent.ReturnIntermediateSteps)
	v.SetDefault("agent.handle_parsing_errors", d.Agent.HandleParsingErrors)
	v.SetDefault("agent.max_observation_chars", d.Agent.MaxObservationChars)

	v.SetDefault("requests.timeout_secs", d.Requests.TimeoutSecs)
	v.SetDefault("requests.retry_count", d.Requests.RetryCount)
	v.SetDefault("requests.max_response_bytes", d.Requests.MaxResponseBytes)
	v.SetDefault("requests.user_agent", d.Requests.UserAgent)

	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.password", d.Cache.Password)
	v.SetDefault("cache.db", d.Cache.DB)
	v.SetDefault("cache.ttl_secs", d.Cache.TTLSecs)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.db_path", d.History.DBPath)

	v.SetDefault("privacy.enabled", d.Privacy.Enabled)
	v.SetDefault("privacy.filter_emails", d.Privacy.FilterEmails)
	v.SetDefault("privacy.filter_phones", d.Privacy.FilterPhones)
	v.SetDefault("privacy.filter_cards", d.Privacy.FilterCards)
	v.SetDefault("privacy.filter_ips", d.Privacy.FilterIPs)
	v.SetDefault("privacy.filter_ssn", d.Privacy.FilterSSN)
}
