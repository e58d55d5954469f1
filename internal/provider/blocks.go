package provider

import (
	"bytes"
	"encoding/json"
	"fmt"

	"callnorm/internal/toolcall"
)

// BlocksAdapter normalizes the content-blocks convention: invocations are
// typed tool_use entries embedded in a message's content list, with the
// arguments already structured rather than stringified.
type BlocksAdapter struct{}

func (BlocksAdapter) Name() string { return "blocks" }

type blockEntry struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

type blocksEnvelope struct {
	Content []blockEntry `json:"content"`
}

// Normalize accepts either a bare content array or a message object with a
// content field. Blocks other than tool_use (text, tool_result) carry no
// invocation and are passed over.
func (BlocksAdapter) Normalize(payload json.RawMessage) ([]toolcall.ToolCall, []toolcall.InvalidToolCall, error) {
	trimmed := bytes.TrimSpace(payload)
	var blocks []blockEntry
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return nil, nil, fmt.Errorf("decode content block array: %w", err)
		}
	} else {
		var envelope blocksEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, nil, fmt.Errorf("decode content block payload: %w", err)
		}
		blocks = envelope.Content
	}

	var calls []toolcall.ToolCall
	var invalid []toolcall.InvalidToolCall
	for _, block := range blocks {
		if block.Type != "tool_use" {
			continue
		}
		raw := string(bytes.TrimSpace(block.Input))
		if block.Name == "" {
			invalid = append(invalid, toolcall.InvalidToolCall{
				ID:    block.ID,
				Args:  raw,
				Error: "tool name missing",
			})
			continue
		}
		// The blocks convention emits input: {} for zero-argument tools, but
		// some proxies drop the field entirely; treat absence as empty input.
		if raw == "" || raw == "null" {
			raw = "{}"
		}
		args, err := toolcall.ParseArguments(raw)
		if err != nil {
			invalid = append(invalid, toolcall.InvalidToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Args:  string(block.Input),
				Error: err.Error(),
			})
			continue
		}
		calls = append(calls, toolcall.ToolCall{ID: block.ID, Name: block.Name, Arguments: args})
	}
	return calls, invalid, nil
}
