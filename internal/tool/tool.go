package tool

import (
	"context"
	"unicode/utf8"
)

// Tool is a named capability the reasoning agent can invoke with free-form
// text input. The description is shown to the model verbatim.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, input string) (string, error)
}

// RunFunc is the invocation half of a Tool.
type RunFunc func(ctx context.Context, input string) (string, error)

// Func adapts a plain function into a Tool.
type Func struct {
	name        string
	description string
	run         RunFunc
}

var _ Tool = (*Func)(nil)

// NewFunc creates a Tool from a name, a description and an invocation.
func NewFunc(name, description string, run RunFunc) *Func {
	return &Func{name: name, description: description, run: run}
}

func (f *Func) Name() string        { return f.name }
func (f *Func) Description() string { return f.description }

func (f *Func) Run(ctx context.Context, input string) (string, error) {
	return f.run(ctx, input)
}

// Clip cuts s to at most n bytes without splitting a UTF-8 sequence.
func Clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
