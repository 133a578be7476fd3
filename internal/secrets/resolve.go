package secrets

import "os"

// providerEnv maps LLM providers to their conventional API key variables.
var providerEnv = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"gemini":     "GEMINI_API_KEY",
}

// KeyName is the keyring entry name for a provider's API key.
func KeyName(provider string) string {
	return provider + "_api_key"
}

// EnvVar returns the environment variable consulted for provider, if any.
func EnvVar(provider string) (string, bool) {
	name, ok := providerEnv[provider]
	return name, ok
}

// ResolveAPIKey returns the first non-empty key from: the configured value,
// the provider's environment variable, the key store. Providers without a
// known variable (e.g. "local") only use the configured value.
func (ks *KeyStore) ResolveAPIKey(provider, configured string) string {
	if configured != "" {
		return configured
	}
	env, ok := providerEnv[provider]
	if !ok {
		return ""
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if ks == nil {
		return ""
	}
	v, err := ks.Get(KeyName(provider))
	if err != nil {
		return ""
	}
	return v
}
