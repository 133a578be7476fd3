package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"clinical-agent/internal/agent"
	"clinical-agent/internal/clinicaltrials"
	"clinical-agent/internal/config"
	"clinical-agent/internal/secrets"
)

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{url: "https://openrouter.ai/api/v1"},
		{url: "http://localhost:11434/v1"},
		{url: "ftp://example.com", wantErr: true},
		{url: "https://", wantErr: true},
		{url: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := validateBaseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveLLMKey(t *testing.T) {
	keyring.MockInit()
	ks := secrets.NewKeyStore(t.TempDir(), "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := config.LLMConfig{Provider: "anthropic"}
	err := resolveLLMKey(ks, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	require.NoError(t, ks.Set(secrets.KeyName("anthropic"), "sk-ant-123456789"))
	require.NoError(t, resolveLLMKey(ks, &cfg))
	assert.Equal(t, "sk-ant-123456789", cfg.APIKey)

	local := config.LLMConfig{Provider: "local", BaseURL: "http://localhost:8080/v1"}
	assert.NoError(t, resolveLLMKey(ks, &local))

	badURL := config.LLMConfig{Provider: "local", BaseURL: "file:///etc/passwd"}
	assert.Error(t, resolveLLMKey(ks, &badURL))
}

func newAskTestCmd(t *testing.T, args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "ask", RunE: func(*cobra.Command, []string) error { return nil }}
	addAskFlags(cmd)
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyAskFlags(t *testing.T) {
	cmd := newAskTestCmd(t, "--steps", "--max-iterations", "3", "--max-time", "45s",
		"--early-stopping", "generate", "--handle-parsing-errors")

	opts := clinicaltrials.OptionsFromConfig(config.Defaults())
	require.NoError(t, applyAskFlags(cmd, &opts))

	assert.True(t, opts.ReturnIntermediateSteps)
	assert.Equal(t, 3, opts.MaxIterations)
	assert.Equal(t, 45*time.Second, opts.MaxExecutionTime)
	assert.Equal(t, agent.EarlyStoppingGenerate, opts.EarlyStoppingMethod)
	assert.Equal(t, true, opts.ExecutorExtra[agent.ExtraHandleParsingErrors])
}

func TestApplyAskFlagsKeepsConfig(t *testing.T) {
	cmd := newAskTestCmd(t)

	opts := clinicaltrials.OptionsFromConfig(config.Defaults())
	require.NoError(t, applyAskFlags(cmd, &opts))
	assert.Equal(t, 15, opts.MaxIterations)
	assert.Equal(t, agent.EarlyStoppingForce, opts.EarlyStoppingMethod)
}

func TestApplyAskFlagsNoIterationCap(t *testing.T) {
	cmd := newAskTestCmd(t, "--max-iterations=-1")

	opts := clinicaltrials.OptionsFromConfig(config.Defaults())
	require.NoError(t, applyAskFlags(cmd, &opts))
	assert.Equal(t, agent.NoIterationCap, opts.MaxIterations)
}

func TestApplyAskFlagsRejectsUnknownEarlyStopping(t *testing.T) {
	cmd := newAskTestCmd(t, "--early-stopping", "later")

	opts := clinicaltrials.OptionsFromConfig(config.Defaults())
	assert.Error(t, applyAskFlags(cmd, &opts))
}

func TestPrintSteps(t *testing.T) {
	var buf bytes.Buffer
	printSteps(&buf, []agent.Step{{
		Action:      agent.Action{Tool: clinicaltrials.ToolName, ToolInput: "https://clinicaltrials.gov/api/query/field_values?expr=asthma&field=Phase"},
		Observation: "line one\nline two",
	}})

	assert.Contains(t, buf.String(), "[1] clinical_http_requests(https://clinicaltrials.gov/api/query/field_values?expr=asthma&field=Phase)")
	assert.Contains(t, buf.String(), "line one line two")
}

func TestRunStatus(t *testing.T) {
	assert.Equal(t, "answered", runStatus(false, ""))
	assert.Equal(t, "stopped", runStatus(true, ""))
	assert.Equal(t, "failed", runStatus(false, "boom"))
}
