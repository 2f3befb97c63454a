package tools

import (
	"context"
	"fmt"
	"sync"
)

// Handler implements one tool. It receives validated arguments with defaults
// applied and returns a payload (string, *Result, or any JSON-encodable value)
// or an error. Errors of type *types.ToolError keep their kind.
type Handler func(ctx context.Context, args Args) (any, error)

// Tool pairs a descriptor with its handler.
type Tool struct {
	Descriptor
	Handler Handler
}

// DuplicateNameError is returned when a tool name is registered twice.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// Registry holds an adapter's tools in registration order. It is filled at
// startup and only read afterwards.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// NewRegistryFrom registers every tool in order and stops at the first error.
func NewRegistryFrom(list []Tool) (*Registry, error) {
	r := NewRegistry()
	for _, t := range list {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. A duplicate name fails with *DuplicateNameError and
// leaves the registry unchanged.
func (r *Registry) Register(t Tool) error {
	if err := t.Descriptor.Check(); err != nil {
		return err
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q: handler is required", t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return &DuplicateNameError{Name: t.Name}
	}
	t.Descriptor = t.Descriptor.clone()
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, false
	}
	t.Descriptor = t.Descriptor.clone()
	return t, true
}

// List returns every descriptor in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor.clone())
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
