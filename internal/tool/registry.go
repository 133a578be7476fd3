package tool

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Names understood by DefaultRegistry.
const (
	NameHTTPRequests = "http-requests"
	NameRequestsAll  = "requests_all"
)

// ErrDependencyMissing matches every *DependencyMissingError via errors.Is.
var ErrDependencyMissing = errors.New("dependency missing")

// DependencyMissingError is returned when a named tool cannot be resolved.
type DependencyMissingError struct {
	Dependency string
	Err        error
}

func (e *DependencyMissingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dependency missing: %s: %v", e.Dependency, e.Err)
	}
	return "dependency missing: " + e.Dependency
}

func (e *DependencyMissingError) Unwrap() error { return e.Err }

func (e *DependencyMissingError) Is(target error) bool {
	return target == ErrDependencyMissing
}

// Loader resolves a named tool set.
type Loader interface {
	Load(name string, opts RequestOptions) ([]Tool, error)
}

// LoaderFunc builds the tools registered under one name.
type LoaderFunc func(opts RequestOptions) ([]Tool, error)

// Registry maps names to tool loaders.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]LoaderFunc
}

var _ Loader = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[string]LoaderFunc),
	}
}

// DefaultRegistry returns a registry with the HTTP requests tools registered
// under both NameHTTPRequests and NameRequestsAll.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NameHTTPRequests, LoadRequestsTools)
	r.Register(NameRequestsAll, LoadRequestsTools)
	return r
}

// Register adds a loader under name, replacing any previous one.
func (r *Registry) Register(name string, fn LoaderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[name] = fn
}

// Unregister removes the loader for name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loaders, name)
}

// Load builds the tools registered under name.
func (r *Registry) Load(name string, opts RequestOptions) ([]Tool, error) {
	r.mu.RLock()
	fn, ok := r.loaders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &DependencyMissingError{Dependency: name}
	}

	tools, err := fn(opts)
	if err != nil {
		return nil, &DependencyMissingError{Dependency: name, Err: err}
	}
	if len(tools) == 0 {
		return nil, &DependencyMissingError{Dependency: name, Err: errors.New("loader returned no tools")}
	}
	return tools, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loaders))
	for name := range r.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
