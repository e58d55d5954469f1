package stream

import (
	"context"

	"callnorm/internal/toolcall"
)

// Source yields decoded chunks in arrival order. Next blocks only on the
// underlying transport; end-of-stream is reported as io.EOF. Consumers must
// not reorder chunks, since argument concatenation is order-sensitive.
type Source interface {
	Next(ctx context.Context) (toolcall.Chunk, error)
	Close() error
}
