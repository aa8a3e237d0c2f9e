// Package provider defines the gateway contract between the deliberation
// engine and the external AI provider clients, plus the timeout and
// streaming discipline every call goes through. The network clients
// themselves live outside this module; the engine only sees these
// interfaces.
package provider

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Request is one generation request to a provider.
type Request struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// Response is the provider's reply. Partial marks text cut short by a
// streaming timeout; partial text is kept, never discarded.
type Response struct {
	Provider string        `json:"provider"`
	Text     string        `json:"text"`
	Partial  bool          `json:"partial,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Gateway is the minimal provider contract.
type Gateway interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}

// StreamGateway is implemented by providers that can deliver text
// incrementally. onDelta receives each chunk as it arrives; the final
// Response carries the full accumulated text.
type StreamGateway interface {
	Gateway
	GenerateStream(ctx context.Context, req Request, onDelta func(chunk string)) (Response, error)
}

// Registry resolves provider names to gateways. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry creates a registry over the given gateways.
func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

// Get resolves a provider by name.
func (r *Registry) Get(name string) (Gateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("provider: unknown provider %q", name)
	}
	return g, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
