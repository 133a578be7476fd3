package agent

import (
	"fmt"
	"strings"
	"text/template"

	"clinical-agent/internal/tool"
)

// Prompt variables filled at run time.
const (
	VarInput           = "input"
	VarAgentScratchpad = "agent_scratchpad"
)

// Default zero-shot ReAct prompt sections.
const (
	DefaultPrefix = `Answer the following questions as best you can. You have access to the following tools:`

	DefaultFormatInstructions = `Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [{{.tool_names}}]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question`

	DefaultSuffix = `Begin!

Question: {{.input}}
Thought:{{.agent_scratchpad}}`
)

// PromptTemplate is a text/template prompt with some variables bound up
// front (partials) and the rest supplied per call.
type PromptTemplate struct {
	text     string
	partials map[string]string
	tmpl     *template.Template
}

// NewPromptTemplate parses text. Missing variables are reported at Format time.
func NewPromptTemplate(text string, partials map[string]string) (*PromptTemplate, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	p := make(map[string]string, len(partials))
	for k, v := range partials {
		p[k] = v
	}
	return &PromptTemplate{text: text, partials: p, tmpl: tmpl}, nil
}

// Format renders the prompt with vars layered over the partials.
func (p *PromptTemplate) Format(vars map[string]string) (string, error) {
	data := make(map[string]string, len(p.partials)+len(vars))
	for k, v := range p.partials {
		data[k] = v
	}
	for k, v := range vars {
		data[k] = v
	}

	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	return sb.String(), nil
}

// Template returns the unrendered template text.
func (p *PromptTemplate) Template() string { return p.text }

// Partial returns a pre-bound variable.
func (p *PromptTemplate) Partial(name string) (string, bool) {
	v, ok := p.partials[name]
	return v, ok
}

// CreatePrompt assembles the zero-shot prompt: prefix, one "name: description"
// line per tool, format instructions, suffix. Tool text is bound as data, so
// descriptions are never interpreted as template syntax. Empty sections fall
// back to the defaults.
func CreatePrompt(tools []tool.Tool, prefix, suffix, formatInstructions string) (*PromptTemplate, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if formatInstructions == "" {
		formatInstructions = DefaultFormatInstructions
	}

	lines := make([]string, len(tools))
	names := make([]string, len(tools))
	for i, t := range tools {
		lines[i] = t.Name() + ": " + t.Description()
		names[i] = t.Name()
	}

	text := strings.Join([]string{prefix, "{{.tools}}", formatInstructions, suffix}, "\n\n")
	return NewPromptTemplate(text, map[string]string{
		"tools":      strings.Join(lines, "\n"),
		"tool_names": strings.Join(names, ", "),
	})
}
