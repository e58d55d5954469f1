package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"callnorm/internal/toolcall"
)

// Registry stores validators keyed by tool name.
type Registry struct {
	validators map[string]*Validator
}

// NewRegistry builds a registry from validators.
func NewRegistry(items ...*Validator) *Registry {
	reg := &Registry{validators: map[string]*Validator{}}
	for _, item := range items {
		reg.validators[item.Tool()] = item
	}
	return reg
}

// LoadFile reads a JSON file mapping tool names to their parameter schemas
// and compiles a registry from it.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	var decls map[string]json.RawMessage
	if err := json.Unmarshal(data, &decls); err != nil {
		return nil, fmt.Errorf("decode schema file: %w", err)
	}
	var validators []*Validator
	for tool, schemaJSON := range decls {
		v, err := Compile(tool, schemaJSON)
		if err != nil {
			return nil, err
		}
		validators = append(validators, v)
	}
	return NewRegistry(validators...), nil
}

// Get returns a validator by tool name.
func (r *Registry) Get(tool string) (*Validator, bool) {
	v, ok := r.validators[tool]
	return v, ok
}

// Names returns sorted tool names with a declared schema.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply checks every well-formed call that has a declared schema, demoting
// failures to the invalid collection. Calls for tools without a declared
// schema pass through untouched.
func (r *Registry) Apply(calls []toolcall.ToolCall, invalid []toolcall.InvalidToolCall) ([]toolcall.ToolCall, []toolcall.InvalidToolCall) {
	var kept []toolcall.ToolCall
	for _, call := range calls {
		validator, ok := r.Get(call.Name)
		if !ok {
			kept = append(kept, call)
			continue
		}
		if failure := validator.Check(call); failure != nil {
			invalid = append(invalid, *failure)
			continue
		}
		kept = append(kept, call)
	}
	return kept, invalid
}
