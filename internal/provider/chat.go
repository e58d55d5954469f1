package provider

import (
	"bytes"
	"encoding/json"
	"fmt"

	"callnorm/internal/toolcall"

	"github.com/openai/openai-go/v3"
)

// ChatAdapter normalizes the chat-completions convention: tool calls live in
// a dedicated array of call objects whose arguments are a stringified JSON
// payload.
type ChatAdapter struct{}

func (ChatAdapter) Name() string { return "chat" }

type chatFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatEntry struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatMessage struct {
	ToolCalls []chatEntry `json:"tool_calls"`
}

type chatEnvelope struct {
	ToolCalls []chatEntry `json:"tool_calls"`
	Choices   []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Normalize accepts either a bare array of call objects, a message object
// with a tool_calls field, or a full chat-completion response body.
func (ChatAdapter) Normalize(payload json.RawMessage) ([]toolcall.ToolCall, []toolcall.InvalidToolCall, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []chatEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, nil, fmt.Errorf("decode tool call array: %w", err)
		}
		calls, invalid := normalizeChatEntries(entries)
		return calls, invalid, nil
	}
	var envelope chatEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, nil, fmt.Errorf("decode chat completion payload: %w", err)
	}
	entries := envelope.ToolCalls
	for _, choice := range envelope.Choices {
		entries = append(entries, choice.Message.ToolCalls...)
	}
	calls, invalid := normalizeChatEntries(entries)
	return calls, invalid, nil
}

func normalizeChatEntries(entries []chatEntry) ([]toolcall.ToolCall, []toolcall.InvalidToolCall) {
	var calls []toolcall.ToolCall
	var invalid []toolcall.InvalidToolCall
	for _, entry := range entries {
		if entry.Type != "" && entry.Type != "function" {
			invalid = append(invalid, toolcall.InvalidToolCall{
				ID:    entry.ID,
				Name:  entry.Function.Name,
				Args:  entry.Function.Arguments,
				Error: fmt.Sprintf("unsupported tool call type %q", entry.Type),
			})
			continue
		}
		if entry.Function.Name == "" {
			invalid = append(invalid, toolcall.InvalidToolCall{
				ID:    entry.ID,
				Args:  entry.Function.Arguments,
				Error: "tool name missing",
			})
			continue
		}
		args, err := toolcall.ParseArguments(entry.Function.Arguments)
		if err != nil {
			invalid = append(invalid, toolcall.InvalidToolCall{
				ID:    entry.ID,
				Name:  entry.Function.Name,
				Args:  entry.Function.Arguments,
				Error: err.Error(),
			})
			continue
		}
		calls = append(calls, toolcall.ToolCall{ID: entry.ID, Name: entry.Function.Name, Arguments: args})
	}
	return calls, invalid
}

// FromCompletion normalizes an SDK chat completion directly, so callers that
// already hold a decoded openai.ChatCompletion skip the raw JSON path.
func FromCompletion(resp *openai.ChatCompletion) ([]toolcall.ToolCall, []toolcall.InvalidToolCall, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, nil, fmt.Errorf("empty response")
	}
	var entries []chatEntry
	for _, tc := range resp.Choices[0].Message.ToolCalls {
		if tc.Type != "function" {
			entries = append(entries, chatEntry{ID: tc.ID, Type: string(tc.Type)})
			continue
		}
		fn := tc.AsFunction()
		entries = append(entries, chatEntry{
			ID:   fn.ID,
			Type: "function",
			Function: chatFunction{
				Name:      fn.Function.Name,
				Arguments: fn.Function.Arguments,
			},
		})
	}
	calls, invalid := normalizeChatEntries(entries)
	return calls, invalid, nil
}

// ChunksFromDelta converts one SDK streaming delta into canonical chunks.
// A single transport event can carry fragments for several logical calls.
func ChunksFromDelta(chunk openai.ChatCompletionChunk) []toolcall.Chunk {
	var out []toolcall.Chunk
	for _, choice := range chunk.Choices {
		for _, tc := range choice.Delta.ToolCalls {
			out = append(out, toolcall.Chunk{
				Index: int(tc.Index),
				ID:    tc.ID,
				Name:  tc.Function.Name,
				Args:  tc.Function.Arguments,
			})
		}
	}
	return out
}
