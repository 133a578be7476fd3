package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinical-agent/internal/tool"
)

func TestCreatePromptDefaults(t *testing.T) {
	tools := []tool.Tool{
		&recordingTool{name: "alpha"},
		&recordingTool{name: "beta"},
	}

	p, err := CreatePrompt(tools, "", "", "")
	require.NoError(t, err)

	out, err := p.Format(map[string]string{VarInput: "what?", VarAgentScratchpad: ""})
	require.NoError(t, err)

	assert.Contains(t, out, DefaultPrefix)
	assert.Contains(t, out, "alpha: fetches alpha\nbeta: fetches beta")
	assert.Contains(t, out, "should be one of [alpha, beta]")
	assert.Contains(t, out, "Question: what?\nThought:")

	names, ok := p.Partial("tool_names")
	require.True(t, ok)
	assert.Equal(t, "alpha, beta", names)
}

func TestCreatePromptCustomSections(t *testing.T) {
	p, err := CreatePrompt([]tool.Tool{&recordingTool{name: "t"}}, "PREFIX", "Q={{.input}} S={{.agent_scratchpad}}", "FORMAT [{{.tool_names}}]")
	require.NoError(t, err)

	out, err := p.Format(map[string]string{VarInput: "q", VarAgentScratchpad: "s"})
	require.NoError(t, err)
	assert.Equal(t, "PREFIX\n\nt: fetches t\n\nFORMAT [t]\n\nQ=q S=s", out)
}

func TestPromptDescriptionIsNotTemplate(t *testing.T) {
	braces := tool.NewFunc("braces", "uses {{.input}} literally", nil)

	p, err := CreatePrompt([]tool.Tool{braces}, "", "", "")
	require.NoError(t, err)

	out, err := p.Format(map[string]string{VarInput: "Q", VarAgentScratchpad: ""})
	require.NoError(t, err)
	assert.Contains(t, out, "braces: uses {{.input}} literally")
}

func TestPromptMissingVariable(t *testing.T) {
	p, err := CreatePrompt(nil, "", "", "")
	require.NoError(t, err)

	_, err = p.Format(map[string]string{VarInput: "only input"})
	assert.Error(t, err)
}

func TestNewPromptTemplateParseError(t *testing.T) {
	_, err := NewPromptTemplate("{{.broken", nil)
	assert.Error(t, err)
}
