package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "STUDY_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeStudyCreated   = "STUDY_CREATED"
	TypeAssayCreated   = "ASSAY_CREATED"
	TypeFolderRepaired = "FOLDER_REPAIRED"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

// Payload carries the event data plus its type and timestamp, so consumers
// reading the raw message see the full event.
func (e BaseEvent) Payload() map[string]interface{} {
	out := make(map[string]interface{}, len(e.Data)+2)
	for k, v := range e.Data {
		out[k] = v
	}
	out["type"] = e.Type
	out["occurred_at"] = e.OccurredAt.UTC().Format(time.RFC3339)
	return out
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}
