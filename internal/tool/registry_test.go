package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoLoader(opts RequestOptions) ([]Tool, error) {
	return []Tool{
		NewFunc("echo", "echoes input", func(_ context.Context, in string) (string, error) {
			return "echo: " + in, nil
		}),
	}, nil
}

func TestRegistryRegisterAndLoad(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", echoLoader)

	tools, err := r.Load("echo", RequestOptions{})
	require.NoError(t, err)
	require.Len(t, tools, 1)

	out, err := tools[0].Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)
}

func TestRegistryMissingDependency(t *testing.T) {
	r := NewRegistry()

	tools, err := r.Load(NameHTTPRequests, RequestOptions{})
	assert.Nil(t, tools)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDependencyMissing))

	var depErr *DependencyMissingError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, NameHTTPRequests, depErr.Dependency)
}

func TestRegistryLoaderFailure(t *testing.T) {
	r := NewRegistry()
	cause := errors.New("transport unavailable")
	r.Register("broken", func(RequestOptions) ([]Tool, error) { return nil, cause })
	r.Register("empty", func(RequestOptions) ([]Tool, error) { return nil, nil })

	_, err := r.Load("broken", RequestOptions{})
	assert.ErrorIs(t, err, ErrDependencyMissing)
	assert.ErrorIs(t, err, cause)

	_, err = r.Load("empty", RequestOptions{})
	assert.ErrorIs(t, err, ErrDependencyMissing)
}

func TestRegistryUnregisterAndNames(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{NameHTTPRequests, NameRequestsAll}, r.Names())

	r.Unregister(NameHTTPRequests)
	_, err := r.Load(NameHTTPRequests, RequestOptions{})
	assert.ErrorIs(t, err, ErrDependencyMissing)

	tools, err := r.Load(NameRequestsAll, RequestOptions{})
	require.NoError(t, err)
	assert.Len(t, tools, 5)
}

func TestFuncTool(t *testing.T) {
	f := NewFunc("upper", "does things", func(_ context.Context, in string) (string, error) {
		return in + "!", nil
	})
	assert.Equal(t, "upper", f.Name())
	assert.Equal(t, "does things", f.Description())

	out, err := f.Run(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x!", out)
}
