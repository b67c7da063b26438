package handler

import (
	"context"
	"fmt"
	"sort"
)

// Handler performs the work of one operation. Arguments arrive as the
// operation's argument map merged with a defaulted workingDirectory.
// A returned error marks the operation failed; it never aborts siblings.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Registry maps tool names to handlers. It is assembled once at startup
// and read-only afterwards, so lookups need no locking.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under name. Duplicate names are rejected.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if h == nil {
		return fmt.Errorf("handler for tool %s is nil", name)
	}
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("duplicate tool name: %s", name)
	}
	r.handlers[name] = h
	return nil
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	return len(r.handlers)
}
