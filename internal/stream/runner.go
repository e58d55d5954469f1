package stream

import (
	"context"
	"errors"
	"io"
	"time"

	"callnorm/internal/config"
	"callnorm/internal/events"
	"callnorm/internal/render"
	"callnorm/internal/schema"
	"callnorm/internal/toolcall"
	"callnorm/internal/util"
	"callnorm/internal/version"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result captures a replay for JSON mode.
type Result struct {
	RunID        string                     `json:"run_id"`
	StartedAt    time.Time                  `json:"timestamp_start"`
	FinishedAt   time.Time                  `json:"timestamp_end"`
	Source       string                     `json:"source"`
	ChunkCount   int                        `json:"chunk_count"`
	Status       string                     `json:"status"`
	ToolCalls    []toolcall.ToolCall        `json:"tool_calls"`
	InvalidCalls []toolcall.InvalidToolCall `json:"invalid_tool_calls"`
	Events       []events.Event             `json:"events"`
}

// Runner consumes a chunk source, folds it into an accumulator, and freezes
// the final tool-call set at stream end. Merge and finalize stay pure; the
// only blocking point is Source.Next.
type Runner struct {
	renderer render.Renderer
	logger   *zap.Logger
	schemas  *schema.Registry
	cfg      config.Config
}

// NewRunner constructs a Runner. schemas may be nil to skip declared-schema
// checking.
func NewRunner(renderer render.Renderer, logger *zap.Logger, schemas *schema.Registry, cfg config.Config) *Runner {
	return &Runner{renderer: renderer, logger: logger, schemas: schemas, cfg: cfg}
}

// Run drains src until end-of-stream or cancellation. Cancellation and
// transport errors leave the accumulation in its partial state; the final
// collections are still derived from whatever arrived, with incomplete
// entries reported as invalid rather than dropped.
func (r *Runner) Run(ctx context.Context, src Source, sourceName string) (Result, error) {
	started := time.Now()
	runID := uuid.NewString()
	result := Result{
		RunID:     runID,
		StartedAt: started,
		Source:    sourceName,
		Status:    "success",
	}

	emit := func(event events.Event) {
		result.Events = append(result.Events, event)
		if r.renderer != nil {
			r.renderer.Emit(event)
		}
	}

	emit(events.Event{Type: events.ReplayStarted, Timestamp: time.Now(), Payload: events.ReplayStartedPayload{
		Version:   version.Version,
		Source:    sourceName,
		RunID:     runID,
		StartedAt: started,
	}})

	acc := toolcall.NewAccumulator()
	var runErr error
	for {
		chunk, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			r.logger.Error("stream read failed", zap.Error(err))
			emit(events.Event{Type: events.ReplayError, Timestamp: time.Now(), Payload: events.ReplayErrorPayload{Message: err.Error()}})
			result.Status = "partial"
			runErr = err
			break
		}
		result.ChunkCount++
		acc.Add(chunk)
		emit(events.Event{Type: events.ChunkMerged, Timestamp: time.Now(), Payload: events.ChunkMergedPayload{
			Index:     chunk.Index,
			Name:      chunk.Name,
			ArgsBytes: len(chunk.Args),
			State:     string(acc.State(chunk.Index)),
			Preview:   util.Preview(util.RedactSecrets(chunk.Args), r.cfg.PreviewBytes),
		}})
	}
	acc.End()

	// One outcome per logical call: finalize each accumulated entry, run the
	// declared-schema check when one applies, then freeze the collections.
	var calls []toolcall.ToolCall
	var invalid []toolcall.InvalidToolCall
	for _, chunk := range acc.Chunks() {
		entryCalls, entryInvalid := toolcall.Finalize([]toolcall.Chunk{chunk})
		if r.schemas != nil && len(entryCalls) > 0 {
			entryCalls, entryInvalid = r.schemas.Apply(entryCalls, entryInvalid)
		}
		for i := range entryCalls {
			if r.cfg.AssignIDs && entryCalls[i].ID == "" {
				entryCalls[i].ID = uuid.NewString()
			}
			emit(events.Event{Type: events.CallCompleted, Timestamp: time.Now(), Payload: events.CallCompletedPayload{
				Index: chunk.Index,
				ID:    entryCalls[i].ID,
				Name:  entryCalls[i].Name,
			}})
			calls = append(calls, entryCalls[i])
		}
		for _, bad := range entryInvalid {
			emit(events.Event{Type: events.CallInvalid, Timestamp: time.Now(), Payload: events.CallInvalidPayload{
				Index: chunk.Index,
				Name:  bad.Name,
				Error: bad.Error,
				Raw:   util.Preview(util.RedactSecrets(bad.Args), r.cfg.PreviewBytes),
			}})
			invalid = append(invalid, bad)
		}
	}
	result.ToolCalls = calls
	result.InvalidCalls = invalid
	if len(invalid) > 0 && result.Status == "success" {
		result.Status = "partial"
	}

	result.FinishedAt = time.Now()
	emit(events.Event{Type: events.StreamFinished, Timestamp: time.Now(), Payload: events.StreamFinishedPayload{
		ChunkCount:   result.ChunkCount,
		CallCount:    len(result.ToolCalls),
		InvalidCount: len(result.InvalidCalls),
		FinishedAt:   result.FinishedAt,
	}})
	return result, runErr
}
