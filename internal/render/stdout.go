package render

import (
	"fmt"
	"io"
	"sync"

	"callnorm/internal/events"
)

// StdoutRenderer streams events to a plain text writer.
type StdoutRenderer struct {
	w          io.Writer
	mu         sync.Mutex
	verbose    bool
	quiet      bool
	showHeader bool
}

// NewStdoutRenderer creates a renderer for plain text streaming.
func NewStdoutRenderer(w io.Writer, verbose, quiet, showHeader bool) *StdoutRenderer {
	return &StdoutRenderer{w: w, verbose: verbose, quiet: quiet, showHeader: showHeader}
}

func (r *StdoutRenderer) Emit(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case events.ReplayStarted:
		if payload, ok := event.Payload.(events.ReplayStartedPayload); ok {
			if r.quiet || !r.showHeader {
				return
			}
			fmt.Fprintf(r.w, "callnorm v%s | source: %s | run: %s\n", payload.Version, payload.Source, payload.RunID)
			fmt.Fprintf(r.w, "Started: %s\n", payload.StartedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
	case events.ChunkMerged:
		if payload, ok := event.Payload.(events.ChunkMergedPayload); ok {
			if r.quiet || !r.verbose {
				return
			}
			fmt.Fprintf(r.w, "chunk: index=%d state=%s args=%dB", payload.Index, payload.State, payload.ArgsBytes)
			if payload.Name != "" {
				fmt.Fprintf(r.w, " name=%s", payload.Name)
			}
			fmt.Fprintln(r.w)
			if payload.Preview != "" {
				fmt.Fprintf(r.w, "  %s\n", payload.Preview)
			}
		}
	case events.CallCompleted:
		if payload, ok := event.Payload.(events.CallCompletedPayload); ok {
			if r.quiet {
				return
			}
			fmt.Fprintf(r.w, "call complete: index=%d name=%s", payload.Index, payload.Name)
			if payload.ID != "" {
				fmt.Fprintf(r.w, " id=%s", payload.ID)
			}
			fmt.Fprintln(r.w)
		}
	case events.CallInvalid:
		if payload, ok := event.Payload.(events.CallInvalidPayload); ok {
			if r.quiet {
				return
			}
			fmt.Fprintf(r.w, "call invalid: index=%d", payload.Index)
			if payload.Name != "" {
				fmt.Fprintf(r.w, " name=%s", payload.Name)
			}
			fmt.Fprintf(r.w, " error=%s\n", payload.Error)
			if r.verbose && payload.Raw != "" {
				fmt.Fprintf(r.w, "  raw: %s\n", payload.Raw)
			}
		}
	case events.StreamFinished:
		if payload, ok := event.Payload.(events.StreamFinishedPayload); ok {
			if r.quiet {
				return
			}
			fmt.Fprintf(r.w, "stream finished: %d chunks, %d calls, %d invalid\n", payload.ChunkCount, payload.CallCount, payload.InvalidCount)
		}
	case events.ReplayError:
		if payload, ok := event.Payload.(events.ReplayErrorPayload); ok {
			fmt.Fprintf(r.w, "error: %s\n", payload.Message)
		}
	}
}

func (r *StdoutRenderer) Close() error { return nil }
