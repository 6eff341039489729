package loop

// EventKind tags one lifecycle event on the stream consumed by the UI.
type EventKind string

const (
	// EventStarted opens a session's event sequence.
	EventStarted EventKind = "started"
	// EventChunk carries incremental model output.
	EventChunk EventKind = "chunk"
	// EventComplete carries a full model response; exactly one terminal
	// event (Complete or Error) closes each model call.
	EventComplete EventKind = "complete"
	// EventError is the failing terminal event.
	EventError EventKind = "error"
)

// Event is one discrete lifecycle event. For a given session Started
// precedes any Chunk, which precedes exactly one terminal event.
type Event struct {
	Kind         EventKind
	SessionID    string
	UserMessage  string // Started
	Content      string // Chunk
	FullResponse string // Complete
	Err          string // Error
}

// emit sends without blocking: the UI thread only ever drains, and a
// stalled consumer must not stall a background unit. Dropped events are
// a rendering concern only; the durable record lives in the audit log.
func (o *Orchestrator) emit(ev Event) {
	select {
	case o.events <- ev:
	default:
	}
}
