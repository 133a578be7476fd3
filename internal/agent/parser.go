package agent

import (
	"fmt"
	"regexp"
	"strings"
)

const finalAnswerMarker = "Final Answer:"

var (
	actionRe      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionOnlyRe  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputRe = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
)

// Observations fed back to the model when its output cannot be parsed.
const (
	missingActionObservation      = "Invalid Format: Missing 'Action:' after 'Thought:'"
	missingActionInputObservation = "Invalid Format: Missing 'Action Input:' after 'Action:'"
	invalidResponseObservation    = "Invalid or incomplete response"
)

// Action is a tool invocation chosen by the model.
type Action struct {
	Tool      string `json:"tool"`
	ToolInput string `json:"tool_input"`
	Log       string `json:"log"`
}

// Finish is the model's final answer.
type Finish struct {
	Output string `json:"output"`
	Log    string `json:"log"`
}

// Step is one action and the observation it produced.
type Step struct {
	Action      Action `json:"action"`
	Observation string `json:"observation"`
}

// OutputParserError reports model output that is neither an action nor a
// final answer. Observation, when set, is what the model is told.
type OutputParserError struct {
	Message     string
	LLMOutput   string
	Observation string
}

func (e *OutputParserError) Error() string {
	return e.Message
}

// ParseOutput reads one ReAct step. Exactly one of the results is non-nil
// on success.
func ParseOutput(text string) (*Action, *Finish, error) {
	includesAnswer := strings.Contains(text, finalAnswerMarker)
	m := actionRe.FindStringSubmatch(text)

	switch {
	case m != nil && includesAnswer:
		return nil, nil, &OutputParserError{
			Message:   "Parsing LLM output produced both a final answer and a parse-able action: " + text,
			LLMOutput: text,
		}
	case m != nil:
		input := strings.Trim(strings.TrimSpace(m[2]), `"`)
		return &Action{
			Tool:      strings.TrimSpace(m[1]),
			ToolInput: input,
			Log:       text,
		}, nil, nil
	case includesAnswer:
		parts := strings.Split(text, finalAnswerMarker)
		return nil, &Finish{
			Output: strings.TrimSpace(parts[len(parts)-1]),
			Log:    text,
		}, nil
	}

	if !actionOnlyRe.MatchString(text) {
		return nil, nil, &OutputParserError{
			Message:     fmt.Sprintf("Could not parse LLM output: `%s`", text),
			LLMOutput:   text,
			Observation: missingActionObservation,
		}
	}
	if !actionInputRe.MatchString(text) {
		return nil, nil, &OutputParserError{
			Message:     fmt.Sprintf("Could not parse LLM output: `%s`", text),
			LLMOutput:   text,
			Observation: missingActionInputObservation,
		}
	}
	return nil, nil, &OutputParserError{
		Message:   fmt.Sprintf("Could not parse LLM output: `%s`", text),
		LLMOutput: text,
	}
}
