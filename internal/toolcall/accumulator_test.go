package toolcall

import (
	"reflect"
	"testing"
)

func TestStreamedCalculatorReconstruction(t *testing.T) {
	chunks := []Chunk{
		{Index: 0, Name: "calculator"},
		{Index: 0, Args: `{"operation":"divide","number1":308,`},
		{Index: 0, Args: `"number2":29}`},
	}

	var acc []Chunk
	acc = Merge(acc, chunks[0])
	acc = Merge(acc, chunks[1])

	calls, invalid := Finalize(acc)
	if len(calls) != 0 || len(invalid) != 1 {
		t.Fatalf("expected one invalid entry before final chunk, got %d calls, %d invalid", len(calls), len(invalid))
	}
	if invalid[0].Args != `{"operation":"divide","number1":308,` {
		t.Fatalf("expected raw partial args preserved, got %q", invalid[0].Args)
	}
	if invalid[0].Error == "" {
		t.Fatalf("expected error description")
	}

	acc = Merge(acc, chunks[2])
	calls, invalid = Finalize(acc)
	if len(calls) != 1 || len(invalid) != 0 {
		t.Fatalf("expected one complete call, got %d calls, %d invalid", len(calls), len(invalid))
	}
	if calls[0].Name != "calculator" {
		t.Fatalf("unexpected name %q", calls[0].Name)
	}
	want := map[string]any{"operation": "divide", "number1": float64(308), "number2": float64(29)}
	if !reflect.DeepEqual(calls[0].Arguments, want) {
		t.Fatalf("unexpected arguments %v", calls[0].Arguments)
	}
}

func TestMergeAssociativity(t *testing.T) {
	chunks := []Chunk{
		{Index: 0, ID: "call_1", Name: "search"},
		{Index: 0, Args: `{"query":`},
		{Index: 0, Args: `"go merge`},
		{Index: 0, Args: ` laws"}`},
	}

	sequential := MergeLists(nil, chunks)

	// Any contiguous split of the ordered stream must land on the same state.
	for cut := 1; cut < len(chunks); cut++ {
		left := MergeLists(nil, chunks[:cut])
		right := MergeLists(nil, chunks[cut:])
		combined := MergeLists(left, right)
		if !reflect.DeepEqual(combined, sequential) {
			t.Fatalf("split at %d diverged: %v != %v", cut, combined, sequential)
		}
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	base := MergeLists(nil, []Chunk{{Index: 0, Name: "a", Args: "{"}})
	snapshot := make([]Chunk, len(base))
	copy(snapshot, base)

	_ = Merge(base, Chunk{Index: 0, Args: `"k":1}`})
	if !reflect.DeepEqual(base, snapshot) {
		t.Fatalf("merge mutated accumulated input: %v", base)
	}
}

func TestFirstValueWinsForNameAndID(t *testing.T) {
	acc := MergeLists(nil, []Chunk{
		{Index: 0, ID: "call_a", Name: "first"},
		{Index: 0, ID: "call_b", Name: "second", Args: "{}"},
	})
	if len(acc) != 1 {
		t.Fatalf("expected one entry, got %d", len(acc))
	}
	if acc[0].Name != "first" || acc[0].ID != "call_a" {
		t.Fatalf("expected first non-absent values kept, got %+v", acc[0])
	}
}

func TestIndexIndependence(t *testing.T) {
	c0a := Chunk{Index: 0, Name: "alpha", Args: `{"a":`}
	c0b := Chunk{Index: 0, Args: `1}`}
	c1a := Chunk{Index: 1, Name: "beta", Args: `{"b":`}
	c1b := Chunk{Index: 1, Args: `2}`}

	interleaved := MergeLists(nil, []Chunk{c0a, c1a, c0b, c1b})
	grouped := MergeLists(MergeLists(nil, []Chunk{c0a, c0b}), []Chunk{c1a, c1b})

	callsA, invalidA := Finalize(interleaved)
	callsB, invalidB := Finalize(grouped)
	if len(invalidA) != 0 || len(invalidB) != 0 {
		t.Fatalf("expected no invalid entries")
	}
	if !reflect.DeepEqual(callsA, callsB) {
		t.Fatalf("index grouping diverged: %v != %v", callsA, callsB)
	}
	if len(callsA) != 2 || callsA[0].Name != "alpha" || callsA[1].Name != "beta" {
		t.Fatalf("unexpected calls %v", callsA)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	acc := MergeLists(nil, []Chunk{
		{Index: 0, Name: "done", Args: `{"x":true}`},
		{Index: 1, Name: "pending", Args: `{"y":`},
	})

	callsA, invalidA := Finalize(acc)
	callsB, invalidB := Finalize(acc)
	if !reflect.DeepEqual(callsA, callsB) || !reflect.DeepEqual(invalidA, invalidB) {
		t.Fatalf("finalize is not idempotent")
	}
	if len(callsA) != 1 || len(invalidA) != 1 {
		t.Fatalf("expected one call and one invalid, got %d/%d", len(callsA), len(invalidA))
	}
}

func TestFinalizeMissingName(t *testing.T) {
	calls, invalid := Finalize([]Chunk{{Index: 0, Args: `{"a":1}`}})
	if len(calls) != 0 || len(invalid) != 1 {
		t.Fatalf("expected one invalid entry, got %d/%d", len(calls), len(invalid))
	}
	if invalid[0].Error != "tool name missing" {
		t.Fatalf("unexpected error %q", invalid[0].Error)
	}
	if invalid[0].Args != `{"a":1}` {
		t.Fatalf("expected raw args preserved, got %q", invalid[0].Args)
	}
}

func TestFinalizeNullArguments(t *testing.T) {
	calls, invalid := Finalize([]Chunk{{Index: 0, Name: "noop", Args: "null"}})
	if len(calls) != 0 || len(invalid) != 1 {
		t.Fatalf("expected null arguments to be invalid, got %d/%d", len(calls), len(invalid))
	}
	if invalid[0].Args != "null" {
		t.Fatalf("expected raw args preserved, got %q", invalid[0].Args)
	}
	if invalid[0].Error == "" {
		t.Fatalf("expected error description")
	}
}

func TestAccumulatorStates(t *testing.T) {
	acc := NewAccumulator()
	if got := acc.State(0); got != StateEmpty {
		t.Fatalf("expected empty, got %s", got)
	}

	acc.Add(Chunk{Index: 0, Name: "calc", Args: `{"n":`})
	if got := acc.State(0); got != StatePartial {
		t.Fatalf("expected partial, got %s", got)
	}

	acc.Add(Chunk{Index: 0, Args: `1}`})
	if got := acc.State(0); got != StateComplete {
		t.Fatalf("expected complete, got %s", got)
	}

	// More chunks after a clean parse are legal and re-open the entry.
	acc.Add(Chunk{Index: 0, Args: `{`})
	if got := acc.State(0); got != StatePartial {
		t.Fatalf("expected partial after trailing garbage, got %s", got)
	}

	acc.End()
	if got := acc.State(0); got != StateError {
		t.Fatalf("expected error after stream end, got %s", got)
	}
}

func TestAccumulatorMessageDropsChunksAtEnd(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(Chunk{Index: 0, Name: "calc", Args: `{"n":1}`})

	msg := acc.Message()
	if len(msg.Chunks) != 1 {
		t.Fatalf("expected chunk list while streaming")
	}

	acc.End()
	msg = acc.Message()
	if msg.Chunks != nil {
		t.Fatalf("expected no chunk list after stream end")
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected frozen tool call set")
	}
}
