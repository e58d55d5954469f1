package events

import "time"

// Type represents an emitted event type.
type Type string

const (
	ReplayStarted  Type = "ReplayStarted"
	ChunkMerged    Type = "ChunkMerged"
	CallCompleted  Type = "CallCompleted"
	CallInvalid    Type = "CallInvalid"
	StreamFinished Type = "StreamFinished"
	ReplayError    Type = "ReplayError"
)

// Event is the common envelope for renderer events.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ReplayStartedPayload is emitted when a stream begins.
type ReplayStartedPayload struct {
	Version   string    `json:"version"`
	Source    string    `json:"source"`
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}

// ChunkMergedPayload marks one chunk folded into the accumulator.
type ChunkMergedPayload struct {
	Index     int    `json:"index"`
	Name      string `json:"name,omitempty"`
	ArgsBytes int    `json:"args_bytes"`
	State     string `json:"state"`
	Preview   string `json:"preview,omitempty"`
}

// CallCompletedPayload is emitted when a logical call first parses cleanly.
type CallCompletedPayload struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
}

// CallInvalidPayload is emitted for entries still malformed at stream end.
type CallInvalidPayload struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
	Raw   string `json:"raw"`
}

// StreamFinishedPayload closes the replay with the frozen final counts.
type StreamFinishedPayload struct {
	ChunkCount   int       `json:"chunk_count"`
	CallCount    int       `json:"call_count"`
	InvalidCount int       `json:"invalid_count"`
	FinishedAt   time.Time `json:"finished_at"`
}

// ReplayErrorPayload records a transport error.
type ReplayErrorPayload struct {
	Message string `json:"message"`
}
