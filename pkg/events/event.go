package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "transcript.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeTranscriptCompleted = "transcript.completed"

	// Progress kinds raised by the generation engine.
	KindRetrieve = "retrieve"
	KindGenerate = "generate"
	KindTool     = "tool"
)

// Progress is a lifecycle notification raised while an answer is generated
// (retrieval started, tool called, ...). Only the title reaches the client.
type Progress struct {
	BaseEvent
}

// NewProgress creates a progress event of the given kind.
func NewProgress(kind, title string) Progress {
	return Progress{BaseEvent{
		Type:       kind,
		Data:       map[string]interface{}{"title": title},
		OccurredAt: time.Now(),
	}}
}

// Title returns the human readable title of the event.
func (p Progress) Title() string {
	if t, ok := p.Data["title"].(string); ok {
		return t
	}
	return p.Type
}

// NewTranscriptCompleted announces that a session transcript gained a complete turn.
func NewTranscriptCompleted(sessionKey string) BaseEvent {
	return BaseEvent{
		Type:       TypeTranscriptCompleted,
		Data:       map[string]interface{}{"session_key": sessionKey},
		OccurredAt: time.Now(),
	}
}
