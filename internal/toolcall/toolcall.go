package toolcall

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ToolCall is a completed, well-formed invocation request.
type ToolCall struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// InvalidToolCall is a malformed invocation. The raw argument text is kept
// verbatim so callers can surface it or hand it back to the model.
type InvalidToolCall struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Args  string `json:"args"`
	Error string `json:"error"`
}

// Chunk is a fragment of an in-progress streamed invocation. Fragments
// sharing an Index belong to the same logical call; every other field may be
// empty because a single transport event can carry only a slice of the
// payload.
type Chunk struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Args  string `json:"args,omitempty"`
}

// Message aggregates the normalized view of one model response. Chunks is
// populated only while the response is still streaming.
type Message struct {
	Content      string            `json:"content,omitempty"`
	ToolCalls    []ToolCall        `json:"tool_calls"`
	InvalidCalls []InvalidToolCall `json:"invalid_tool_calls"`
	Chunks       []Chunk           `json:"tool_call_chunks,omitempty"`
}

// ParseArguments decodes raw argument text into the structured form a
// ToolCall carries. Tool parameters are declared as JSON objects, so a
// top-level non-object is rejected.
func ParseArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, errors.New("no argument data received")
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments are not a complete JSON object: %q", raw)
	}
	// A bare null leaves the map nil without an unmarshal error. Whether
	// null means "no arguments" is a per-convention call that belongs to
	// the adapters; here it is not an object.
	if args == nil {
		return nil, fmt.Errorf("arguments are not a complete JSON object: %q", raw)
	}
	return args, nil
}
