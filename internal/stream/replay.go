package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"callnorm/internal/provider"
	"callnorm/internal/toolcall"

	"github.com/openai/openai-go/v3"
)

// ReplaySource reads a recorded chunk stream line by line. Each line is
// either a canonical chunk record or a chat-completions streaming delta;
// SSE dump prefixes ("data: ") and the [DONE] sentinel are tolerated so a
// captured wire log replays unmodified.
type ReplaySource struct {
	scanner *bufio.Scanner
	closer  io.Closer
	pending []toolcall.Chunk
	done    bool
}

// NewReplaySource wraps a reader of JSONL or SSE-dump lines.
func NewReplaySource(r io.Reader) *ReplaySource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	src := &ReplaySource{scanner: scanner}
	if closer, ok := r.(io.Closer); ok {
		src.closer = closer
	}
	return src
}

func (s *ReplaySource) Next(ctx context.Context) (toolcall.Chunk, error) {
	for {
		select {
		case <-ctx.Done():
			return toolcall.Chunk{}, ctx.Err()
		default:
		}
		if len(s.pending) > 0 {
			chunk := s.pending[0]
			s.pending = s.pending[1:]
			return chunk, nil
		}
		if s.done {
			return toolcall.Chunk{}, io.EOF
		}
		if !s.scanner.Scan() {
			s.done = true
			if err := s.scanner.Err(); err != nil {
				return toolcall.Chunk{}, err
			}
			return toolcall.Chunk{}, io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if line == "" {
			continue
		}
		if line == "[DONE]" {
			s.done = true
			return toolcall.Chunk{}, io.EOF
		}
		chunks, err := decodeChunkLine([]byte(line))
		if err != nil {
			return toolcall.Chunk{}, err
		}
		s.pending = append(s.pending, chunks...)
	}
}

func (s *ReplaySource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// decodeChunkLine decodes one record. Records with a top-level choices key
// are the provider's native streaming delta; everything else is a canonical
// chunk. The key check is on the decoded object, so a chunk whose name or
// argument text mentions choices still routes to the canonical decode.
func decodeChunkLine(line []byte) ([]toolcall.Chunk, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, fmt.Errorf("decode chunk record: %w", err)
	}
	if _, ok := fields["choices"]; ok {
		var delta openai.ChatCompletionChunk
		if err := json.Unmarshal(line, &delta); err != nil {
			return nil, fmt.Errorf("decode streaming delta: %w", err)
		}
		return provider.ChunksFromDelta(delta), nil
	}
	var chunk toolcall.Chunk
	if err := json.Unmarshal(line, &chunk); err != nil {
		return nil, fmt.Errorf("decode chunk record: %w", err)
	}
	return []toolcall.Chunk{chunk}, nil
}
