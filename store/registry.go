package store

import (
	"context"
	"fmt"
	"sync"
)

// JobHandler is the implementation type a persisted job references by name.
// Domain packages implement this interface; the store only resolves names,
// execution belongs to the firing runtime.
type JobHandler interface {
	// Execute runs the job with its merged data map.
	Execute(ctx context.Context, data map[string]string) error

	// Name returns the handler name jobs reference (e.g. "maintenance.cleanup").
	Name() string
}

// HandlerFunc adapts a function to the JobHandler interface.
type HandlerFunc struct {
	HandlerName string
	Fn          func(ctx context.Context, data map[string]string) error
}

func (h HandlerFunc) Execute(ctx context.Context, data map[string]string) error {
	if h.Fn == nil {
		return nil
	}
	return h.Fn(ctx, data)
}

func (h HandlerFunc) Name() string { return h.HandlerName }

// HandlerRegistry resolves handler names to implementations.
// Thread-safe for concurrent registration and lookup.
//
// A job whose handler name is missing from the registry is an orphan: the
// store surfaces it as a TypeResolutionError and the engine's orphan policy
// decides what happens to it.
type HandlerRegistry struct {
	handlers map[string]JobHandler
	mu       sync.RWMutex
}

// NewHandlerRegistry creates an empty handler registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string]JobHandler),
	}
}

// Register adds a handler under its name.
// Panics if a handler is already registered with that name.
func (r *HandlerRegistry) Register(handler JobHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := handler.Name()
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("handler already registered for name: %s", name))
	}
	r.handlers[name] = handler
}

// RegisterFunc adds a function handler under name.
func (r *HandlerRegistry) RegisterFunc(name string, fn func(ctx context.Context, data map[string]string) error) {
	r.Register(HandlerFunc{HandlerName: name, Fn: fn})
}

// Resolve returns the handler registered under name.
func (r *HandlerRegistry) Resolve(name string) (JobHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Resolvable reports whether name has a registered handler.
func (r *HandlerRegistry) Resolvable(name string) bool {
	_, ok := r.Resolve(name)
	return ok
}
