package tools

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// Tool defines the interface for all agent capabilities.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema for the tool's inputs
	Execute(ctx context.Context, input string) (string, error)
}

// Registry manages the set of available tools.
type Registry struct {
	Tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		Tools: make(map[string]Tool),
	}
}

// Register adds t, replacing any tool with the same name in place.
func (r *Registry) Register(t Tool) {
	if _, ok := r.Tools[t.Name()]; !ok {
		r.order = append(r.order, t.Name())
	}
	r.Tools[t.Name()] = t
}

func (r *Registry) Get(name string) Tool {
	return r.Tools[name]
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.Tools[name])
	}
	return out
}

// Definitions describes every tool for function-calling models.
func (r *Registry) Definitions() []llms.Tool {
	defs := make([]llms.Tool, 0, len(r.order))
	for _, t := range r.List() {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}
