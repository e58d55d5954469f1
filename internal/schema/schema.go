// Package schema validates well-formed tool calls against their tool's
// declared parameter schema. Validation failures never surface as hard
// errors; a failing call is demoted to the invalid collection so callers
// keep both views side by side.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"callnorm/internal/toolcall"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator checks parsed arguments against one tool's compiled schema.
type Validator struct {
	tool     string
	compiled *jsonschema.Schema
}

// Compile builds a validator from a tool's declared JSON schema.
func Compile(tool string, schemaJSON []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema for %s: %w", tool, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := tool + ".schema.json"
	if err := compiler.AddResource(resource, doc); err != nil {
		return nil, fmt.Errorf("register schema for %s: %w", tool, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", tool, err)
	}
	return &Validator{tool: tool, compiled: compiled}, nil
}

// Tool returns the tool name this validator covers.
func (v *Validator) Tool() string { return v.tool }

// Check validates one call's arguments. A nil result means the call passes.
func (v *Validator) Check(call toolcall.ToolCall) *toolcall.InvalidToolCall {
	value := toPlain(call.Arguments)
	if err := v.compiled.Validate(value); err != nil {
		raw, _ := json.Marshal(call.Arguments)
		return &toolcall.InvalidToolCall{
			ID:    call.ID,
			Name:  call.Name,
			Args:  string(raw),
			Error: fmt.Sprintf("schema validation failed: %v", err),
		}
	}
	return nil
}

// toPlain rebuilds the value through the jsonschema number model so
// validation sees the same types the compiler expects.
func toPlain(args map[string]any) any {
	raw, err := json.Marshal(args)
	if err != nil {
		return args
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return args
	}
	return doc
}
