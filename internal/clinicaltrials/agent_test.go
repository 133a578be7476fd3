package clinicaltrials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinical-agent/internal/agent"
	"clinical-agent/internal/config"
	"clinical-agent/internal/llm"
	"clinical-agent/internal/tool"
)

// namedModel is a model handle that is only ever compared, never called.
type namedModel string

func (m namedModel) Name() string { return string(m) }

func (m namedModel) Generate(context.Context, *llm.Request) (*llm.Generation, error) {
	return nil, errors.New("not callable")
}

type scriptedModel struct {
	mu      sync.Mutex
	replies []string
	prompts []string
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Generate(_ context.Context, req *llm.Request) (*llm.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, req.Prompt)
	text := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return &llm.Generation{Text: text}, nil
}

type countingTransport struct{ n atomic.Int32 }

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.n.Add(1)
	return http.DefaultTransport.RoundTrip(req)
}

func TestNewAgentKeepsModel(t *testing.T) {
	m := namedModel("test")

	exec, err := NewAgent(m, &Options{})
	require.NoError(t, err)
	assert.Equal(t, llm.Model(m), exec.Model())
}

func TestNewAgentSingleTool(t *testing.T) {
	exec, err := NewAgent(namedModel("test"), nil)
	require.NoError(t, err)

	tools := exec.Tools()
	require.Len(t, tools, 1)
	assert.Equal(t, ToolName, tools[0].Name())
	assert.Equal(t, ToolDescription, tools[0].Description())
	assert.Equal(t, []string{ToolName}, exec.Agent().AllowedTools())
}

func TestNewAgentPromptCarriesDescription(t *testing.T) {
	exec, err := NewAgent(namedModel("test"), nil)
	require.NoError(t, err)

	zs, ok := exec.Agent().(*agent.ZeroShotAgent)
	require.True(t, ok)
	prompt := zs.Chain().Prompt()

	out, err := prompt.Format(map[string]string{agent.VarInput: "q", agent.VarAgentScratchpad: ""})
	require.NoError(t, err)
	assert.Contains(t, out, DefaultPromptPrefix)
	assert.Contains(t, out, ToolName+": "+ToolDescription)
	assert.Contains(t, out, "["+ToolName+"]")
}

func TestToolDescription(t *testing.T) {
	require.NotEmpty(t, ToolDescription)
	for _, mode := range []string{"Full Studies", "Study Fields", "Field Values"} {
		assert.Contains(t, ToolDescription, mode)
	}
	assert.Equal(t, 3, strings.Count(ToolDescription, "https://clinicaltrials.gov/api/query/"))
}

func TestNewAgentDefaults(t *testing.T) {
	exec, err := NewAgent(namedModel("test"), nil)
	require.NoError(t, err)

	cfg := exec.Config()
	assert.Equal(t, 15, cfg.MaxIterations)
	assert.Equal(t, agent.EarlyStoppingForce, cfg.EarlyStoppingMethod)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.ReturnIntermediateSteps)
	assert.Zero(t, cfg.MaxExecutionTime)
}

func TestNewAgentPartialOptionsKeepIterationCap(t *testing.T) {
	exec, err := NewAgent(namedModel("test"), &Options{Verbose: true})
	require.NoError(t, err)

	cfg := exec.Config()
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 15, cfg.MaxIterations)
	assert.Equal(t, agent.EarlyStoppingForce, cfg.EarlyStoppingMethod)
}

func TestNewAgentNoIterationCap(t *testing.T) {
	exec, err := NewAgent(namedModel("test"), &Options{MaxIterations: agent.NoIterationCap})
	require.NoError(t, err)
	assert.Equal(t, agent.NoIterationCap, exec.Config().MaxIterations)
}

func TestNewAgentForwardsOptions(t *testing.T) {
	exec, err := NewAgent(namedModel("test"), &Options{
		Verbose:                 true,
		ReturnIntermediateSteps: true,
		MaxIterations:           4,
		MaxExecutionTime:        time.Minute,
		EarlyStoppingMethod:     agent.EarlyStoppingGenerate,
		ExecutorExtra:           map[string]any{agent.ExtraHandleParsingErrors: true},
	})
	require.NoError(t, err)

	cfg := exec.Config()
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.ReturnIntermediateSteps)
	assert.Equal(t, 4, cfg.MaxIterations)
	assert.Equal(t, time.Minute, cfg.MaxExecutionTime)
	assert.Equal(t, agent.EarlyStoppingGenerate, cfg.EarlyStoppingMethod)
	assert.True(t, exec.HandleParsingErrors())
}

func TestNewAgentRejectsUnknownExtra(t *testing.T) {
	exec, err := NewAgent(namedModel("test"), &Options{ExecutorExtra: map[string]any{"callbacks": nil}})
	assert.ErrorIs(t, err, agent.ErrUnknownOption)
	assert.Nil(t, exec)
}

func TestNewAgentDependencyMissing(t *testing.T) {
	exec, err := NewAgent(namedModel("test"), &Options{Loader: tool.NewRegistry()})
	assert.Nil(t, exec)

	var depErr *tool.DependencyMissingError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, tool.NameHTTPRequests, depErr.Dependency)
	assert.ErrorIs(t, err, tool.ErrDependencyMissing)
}

func TestNewAgentLoaderFailure(t *testing.T) {
	reg := tool.NewRegistry()
	reg.Register(tool.NameHTTPRequests, func(tool.RequestOptions) ([]tool.Tool, error) {
		return nil, errors.New("no transport")
	})

	exec, err := NewAgent(namedModel("test"), &Options{Loader: reg})
	assert.Nil(t, exec)
	assert.ErrorIs(t, err, tool.ErrDependencyMissing)
}

func TestNewAgentSendsNoRequest(t *testing.T) {
	rt := &countingTransport{}

	_, err := NewAgent(namedModel("test"), &Options{RequestOptions: tool.RequestOptions{Transport: rt}})
	require.NoError(t, err)
	assert.Zero(t, rt.n.Load())
}

func TestAgentQueriesClinicalTrials(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"StudyFieldsResponse":{"NStudiesFound":12}}`)
	}))
	defer srv.Close()

	model := &scriptedModel{replies: []string{
		" I should count asthma studies.\nAction: clinical_http_requests\nAction Input: `" + srv.URL + "/api/query/study_fields?expr=asthma&fmt=json`",
		" I now know the final answer\nFinal Answer: 12 studies were found.",
	}}

	exec, err := NewAgent(model, &Options{ReturnIntermediateSteps: true, MaxIterations: 5})
	require.NoError(t, err)

	res, err := exec.Call(context.Background(), "How many asthma studies are there?")
	require.NoError(t, err)
	assert.Equal(t, "12 studies were found.", res.Output)
	assert.Equal(t, "expr=asthma&fmt=json", gotQuery)

	require.Len(t, res.IntermediateSteps, 1)
	assert.Equal(t, ToolName, res.IntermediateSteps[0].Action.Tool)
	assert.Contains(t, res.IntermediateSteps[0].Observation, "NStudiesFound")

	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[1], "Observation: {\"StudyFieldsResponse\"")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Agent.HandleParsingErrors = true
	cfg.Agent.MaxExecutionTimeSecs = 30

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, cfg.Agent.MaxIterations, opts.MaxIterations)
	assert.Equal(t, 30*time.Second, opts.MaxExecutionTime)
	assert.Equal(t, agent.EarlyStoppingMethod(cfg.Agent.EarlyStoppingMethod), opts.EarlyStoppingMethod)
	assert.Equal(t, true, opts.ExecutorExtra[agent.ExtraHandleParsingErrors])
	assert.Equal(t, cfg.Requests.UserAgent, opts.RequestOptions.UserAgent)

	exec, err := NewAgent(namedModel("test"), &opts)
	require.NoError(t, err)
	assert.True(t, exec.HandleParsingErrors())
}
