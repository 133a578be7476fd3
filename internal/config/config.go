package config

// Config is the top-level application configuration.
type Config struct {
	LLM         LLMConfig      `mapstructure:"llm" yaml:"llm"`
	FallbackLLM *LLMConfig     `mapstructure:"fallback_llm" yaml:"fallback_llm,omitempty"`
	Agent       AgentConfig    `mapstructure:"agent" yaml:"agent"`
	Requests    RequestsConfig `mapstructure:"requests" yaml:"requests"`
	Cache       CacheConfig    `mapstructure:"cache" yaml:"cache"`
	History     HistoryConfig  `mapstructure:"history" yaml:"history"`
	Privacy     PrivacyConfig  `mapstructure:"privacy" yaml:"privacy"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	TimeoutSecs int     `mapstructure:"timeout_secs" yaml:"timeout_secs"`
}

// AgentConfig mirrors the executor options of the clinical trials agent.
type AgentConfig struct {
	MaxIterations           int    `mapstructure:"max_iterations" yaml:"max_iterations"`
	MaxExecutionTimeSecs    int    `mapstructure:"max_execution_time_secs" yaml:"max_execution_time_secs"`
	EarlyStoppingMethod     string `mapstructure:"early_stopping_method" yaml:"early_stopping_method"`
	Verbose                 bool   `mapstructure:"verbose" yaml:"verbose"`
	ReturnIntermediateSteps bool   `mapstructure:"return_intermediate_steps" yaml:"return_intermediate_steps"`
	HandleParsingErrors     bool   `mapstructure:"handle_parsing_errors" yaml:"handle_parsing_errors"`
	MaxObservationChars     int    `mapstructure:"max_observation_chars" yaml:"max_observation_chars"`
}

// RequestsConfig configures the HTTP transport used by the requests tools.
type RequestsConfig struct {
	TimeoutSecs      int               `mapstructure:"timeout_secs" yaml:"timeout_secs"`
	RetryCount       int               `mapstructure:"retry_count" yaml:"retry_count"`
	MaxResponseBytes int               `mapstructure:"max_response_bytes" yaml:"max_response_bytes"`
	UserAgent        string            `mapstructure:"user_agent" yaml:"user_agent"`
	Headers          map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`
}

// CacheConfig enables the Redis response cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr,omitempty"`
	Password  string `mapstructure:"password" yaml:"password,omitempty"`
	DB        int    `mapstructure:"db" yaml:"db"`
	TTLSecs   int    `mapstructure:"ttl_secs" yaml:"ttl_secs"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DBPath  string `mapstructure:"db_path" yaml:"db_path,omitempty"`
}

// PrivacyConfig controls which personal data is masked in questions before
// they reach the model.
type PrivacyConfig struct {
	Enabled      bool `mapstructure:"enabled" yaml:"enabled"`
	FilterEmails bool `mapstructure:"filter_emails" yaml:"filter_emails"`
	FilterPhones bool `mapstructure:"filter_phones" yaml:"filter_phones"`
	FilterCards  bool `mapstructure:"filter_cards" yaml:"filter_cards"`
	FilterIPs    bool `mapstructure:"filter_ips" yaml:"filter_ips"`
	FilterSSN    bool `mapstructure:"filter_ssn" yaml:"filter_ssn"`
}
