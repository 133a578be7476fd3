package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	loader := NewLoaderAt(filepath.Join(t.TempDir(), "config.yaml"))

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 15, cfg.Agent.MaxIterations)
	assert.Equal(t, "force", cfg.Agent.EarlyStoppingMethod)
	assert.False(t, cfg.Agent.Verbose)
	assert.False(t, cfg.Agent.ReturnIntermediateSteps)
	assert.Equal(t, 30, cfg.Requests.TimeoutSecs)
	assert.True(t, cfg.History.Enabled)
	assert.Nil(t, cfg.FallbackLLM)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	loader := NewLoaderAt(path)

	cfg := Defaults()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.APIKey = "test-key"
	cfg.Agent.MaxIterations = 4
	cfg.Requests.Headers = map[string]string{"X-Trace": "abc"}
	cfg.FallbackLLM = &LLMConfig{Provider: "gemini", Model: "gemini-1.5-flash"}

	require.NoError(t, loader.Save(cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := NewLoaderAt(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", loaded.LLM.Provider)
	assert.Equal(t, "test-key", loaded.LLM.APIKey)
	assert.Equal(t, 4, loaded.Agent.MaxIterations)
	assert.Equal(t, "abc", loaded.Requests.Headers["x-trace"])
	require.NotNil(t, loaded.FallbackLLM)
	assert.Equal(t, "gemini", loaded.FallbackLLM.Provider)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: anthropic\nagent:\n  max_iterations: 3\n"), 0600))

	t.Setenv("CLINICAL_AGENT_LLM_PROVIDER", "gemini")
	t.Setenv("CLINICAL_AGENT_AGENT_VERBOSE", "true")

	cfg, err := NewLoaderAt(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.True(t, cfg.Agent.Verbose)
	assert.Equal(t, 3, cfg.Agent.MaxIterations)
	assert.Equal(t, "force", cfg.Agent.EarlyStoppingMethod)
}

func TestGetBeforeLoad(t *testing.T) {
	loader := NewLoaderAt(filepath.Join(t.TempDir(), "config.yaml"))
	assert.Equal(t, Defaults(), loader.Get())
}
