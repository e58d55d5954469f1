package toolcall

// Merge folds one incoming chunk into the accumulated per-index entries.
// A previously-unseen index appends a new entry; an existing index gets its
// argument fragment concatenated in arrival order, while name and identifier
// keep the first non-empty value seen. The input slice is not mutated.
func Merge(accumulated []Chunk, incoming Chunk) []Chunk {
	out := make([]Chunk, len(accumulated))
	copy(out, accumulated)
	for i := range out {
		if out[i].Index == incoming.Index {
			out[i] = mergePair(out[i], incoming)
			return out
		}
	}
	return append(out, incoming)
}

// MergeLists merges a batch of already-accumulated entries into accumulated,
// in order. Because mergePair is associative per index, any grouping of the
// same ordered chunk stream yields the same result:
// MergeLists(MergeLists(nil, a), b) == MergeLists(nil, append(a, b...)).
func MergeLists(accumulated, batch []Chunk) []Chunk {
	out := accumulated
	for _, c := range batch {
		out = Merge(out, c)
	}
	return out
}

func mergePair(base, next Chunk) Chunk {
	merged := Chunk{Index: base.Index, ID: base.ID, Name: base.Name, Args: base.Args + next.Args}
	if merged.ID == "" {
		merged.ID = next.ID
	}
	if merged.Name == "" {
		merged.Name = next.Name
	}
	return merged
}

// Finalize derives the best-effort canonical view of the accumulated entries.
// Every entry lands in exactly one of the two collections: a parseable
// argument string with a resolved name becomes a ToolCall, anything else an
// InvalidToolCall describing what is missing. Calling it before stream end is
// legal; entries that are simply not fully received yet are reported invalid
// and callers re-derive after the next chunk.
func Finalize(accumulated []Chunk) ([]ToolCall, []InvalidToolCall) {
	var calls []ToolCall
	var invalid []InvalidToolCall
	for _, c := range accumulated {
		args, err := ParseArguments(c.Args)
		if err != nil {
			invalid = append(invalid, InvalidToolCall{
				ID:    c.ID,
				Name:  c.Name,
				Args:  c.Args,
				Error: err.Error(),
			})
			continue
		}
		if c.Name == "" {
			invalid = append(invalid, InvalidToolCall{
				ID:    c.ID,
				Args:  c.Args,
				Error: "tool name missing",
			})
			continue
		}
		calls = append(calls, ToolCall{ID: c.ID, Name: c.Name, Arguments: args})
	}
	return calls, invalid
}

// State describes one logical call during accumulation.
type State string

const (
	StateEmpty    State = "empty"
	StatePartial  State = "partial"
	StateComplete State = "complete"
	StateError    State = "error"
)

// Accumulator owns the chunk state of one streamed response. It is not safe
// for concurrent use; each stream owns its own.
type Accumulator struct {
	chunks []Chunk
	ended  bool
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add merges one incoming chunk. Chunks may keep arriving for an index that
// already parses cleanly; the merge still applies and parseability is simply
// re-evaluated on the next Finalize.
func (a *Accumulator) Add(c Chunk) {
	a.chunks = Merge(a.chunks, c)
}

// Chunks returns a copy of the accumulated per-index entries in first-seen
// order.
func (a *Accumulator) Chunks() []Chunk {
	out := make([]Chunk, len(a.chunks))
	copy(out, a.chunks)
	return out
}

// Len reports the number of logical calls seen so far.
func (a *Accumulator) Len() int { return len(a.chunks) }

// Finalize derives the current best-effort canonical view. Before End is
// called the result is a snapshot that may still change.
func (a *Accumulator) Finalize() ([]ToolCall, []InvalidToolCall) {
	return Finalize(a.chunks)
}

// End marks the stream as terminated. Merging after End is still permitted
// so a cancelled stream can be drained, but State reports unparseable
// entries as errors from here on.
func (a *Accumulator) End() {
	a.ended = true
}

// Ended reports whether End has been called.
func (a *Accumulator) Ended() bool { return a.ended }

// State reports where the logical call at index sits: empty until a chunk
// arrives, partial while its arguments do not yet parse, complete once they
// do, and error when the stream has ended with the entry still unparseable.
func (a *Accumulator) State(index int) State {
	for _, c := range a.chunks {
		if c.Index != index {
			continue
		}
		if _, err := ParseArguments(c.Args); err == nil && c.Name != "" {
			return StateComplete
		}
		if a.ended {
			return StateError
		}
		return StatePartial
	}
	return StateEmpty
}

// Message assembles the aggregate view of the accumulation: the best-effort
// canonical collections plus, while the stream is still open, the raw chunk
// entries.
func (a *Accumulator) Message() Message {
	calls, invalid := a.Finalize()
	msg := Message{ToolCalls: calls, InvalidCalls: invalid}
	if !a.ended {
		msg.Chunks = a.Chunks()
	}
	return msg
}
