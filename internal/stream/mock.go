package stream

import (
	"context"
	"io"
	"sync"

	"callnorm/internal/toolcall"
)

// MockSource is a deterministic source for tests and demos. It plays a
// two-call sequence with the second call's arguments split mid-token, the
// way chat-completions providers fragment streamed tool calls.
type MockSource struct {
	mu  sync.Mutex
	pos int
	seq []toolcall.Chunk
}

// NewMockSource returns a source over the canned sequence.
func NewMockSource() *MockSource {
	return &MockSource{seq: []toolcall.Chunk{
		{Index: 0, ID: "call_1", Name: "calculator"},
		{Index: 0, Args: `{"operation":"divide",`},
		{Index: 1, ID: "call_2", Name: "get_weather", Args: `{"location":`},
		{Index: 0, Args: `"number1":308,"number2":29}`},
		{Index: 1, Args: `"Sousse"}`},
	}}
}

func (m *MockSource) Next(ctx context.Context) (toolcall.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return toolcall.Chunk{}, err
	}
	if m.pos >= len(m.seq) {
		return toolcall.Chunk{}, io.EOF
	}
	chunk := m.seq[m.pos]
	m.pos++
	return chunk, nil
}

func (m *MockSource) Close() error { return nil }
