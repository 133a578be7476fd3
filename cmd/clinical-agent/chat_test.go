package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestREPLAnswersEachLine(t *testing.T) {
	var asked []string
	in := strings.NewReader("first question\n\n  second question  \nexit\nnever asked\n")
	var out bytes.Buffer

	err := repl(context.Background(), in, &out, func(_ context.Context, q string) (string, error) {
		asked = append(asked, q)
		return "answer to " + q, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"first question", "second question"}, asked)
	assert.Contains(t, out.String(), "answer to first question")
	assert.Contains(t, out.String(), "answer to second question")
}

func TestREPLReportsErrorsAndContinues(t *testing.T) {
	calls := 0
	in := strings.NewReader("bad\ngood\n")
	var out bytes.Buffer

	err := repl(context.Background(), in, &out, func(_ context.Context, q string) (string, error) {
		calls++
		if q == "bad" {
			return "", errors.New("llm error: rate limited")
		}
		return "fine", nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Contains(t, out.String(), "Error: llm error: rate limited")
	assert.Contains(t, out.String(), "fine")
}

func TestREPLStopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := repl(ctx, strings.NewReader("question\n"), &bytes.Buffer{}, func(context.Context, string) (string, error) {
		called = true
		return "", nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
