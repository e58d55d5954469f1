package provider

import (
	"encoding/json"
	"fmt"
	"sort"

	"callnorm/internal/toolcall"
)

// Adapter normalizes one provider payload convention into the canonical
// collections. Per-entry failures are captured as InvalidToolCall data; the
// returned error covers only payloads that do not decode as the adapter's
// envelope at all, which is a transport concern rather than a malformed call.
type Adapter interface {
	Name() string
	Normalize(payload json.RawMessage) ([]toolcall.ToolCall, []toolcall.InvalidToolCall, error)
}

// Registry stores available payload adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a registry from adapters.
func NewRegistry(items ...Adapter) *Registry {
	reg := &Registry{adapters: map[string]Adapter{}}
	for _, item := range items {
		reg.adapters[item.Name()] = item
	}
	return reg
}

// Get returns an adapter by name.
func (r *Registry) Get(name string) (Adapter, bool) {
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// Names returns sorted adapter names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns a registry with every built-in adapter.
func Default() *Registry {
	return NewRegistry(ChatAdapter{}, BlocksAdapter{})
}

// Normalize decodes payload with the named adapter from the registry.
func (r *Registry) Normalize(format string, payload json.RawMessage) ([]toolcall.ToolCall, []toolcall.InvalidToolCall, error) {
	adapter, ok := r.Get(format)
	if !ok {
		return nil, nil, fmt.Errorf("unknown payload format: %s", format)
	}
	return adapter.Normalize(payload)
}
