package config

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			TimeoutSecs: 120,
		},
		Agent: AgentConfig{
			MaxIterations:       15,
			EarlyStoppingMethod: "force",
			MaxObservationChars: 10000,
		},
		Requests: RequestsConfig{
			TimeoutSecs:      30,
			RetryCount:       2,
			MaxResponseBytes: 100000,
			UserAgent:        "clinical-agent/1.0",
		},
		Cache: CacheConfig{
			TTLSecs: 3600,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Privacy: PrivacyConfig{
			Enabled:      true,
			FilterEmails: true,
			FilterPhones: true,
			FilterSSN:    true,
		},
	}
}
