package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hireloop/cvchat/internal/ollama"
)

// ErrUnknownTool is returned when the model requests a tool name outside
// the registered set.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes one tool invocation and returns its result text.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Registry maps a closed, registration-ordered set of tool names to
// typed handlers. The set is fixed before the agent starts serving, so
// lookups need no locking.
type Registry struct {
	defs     []ollama.Tool
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a tool. Registering the same name twice panics: the tool
// set is assembled once at startup and duplicates are wiring bugs.
func (r *Registry) Register(def ollama.Tool, h Handler) {
	name := def.Function.Name
	if _, dup := r.handlers[name]; dup {
		panic(fmt.Sprintf("tool %q registered twice", name))
	}
	r.defs = append(r.defs, def)
	r.handlers[name] = h
}

// Definitions returns the tool schemas in registration order.
func (r *Registry) Definitions() []ollama.Tool {
	return r.defs
}

// Dispatch invokes the named tool.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	h, ok := r.handlers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return h(ctx, args)
}
