package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds carried on the session events queue.
const (
	KindSessionUpsert = "session.upsert"
	KindSessionDelete = "session.delete"
)

// SessionEvent is a lightweight change notification. It carries only the
// session id; the worker fetches the full record from the database, so a
// stale event always resolves to the latest state.
type SessionEvent struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSessionUpsert creates an event signalling a created or updated session.
func NewSessionUpsert(id string, version int64) *SessionEvent {
	return &SessionEvent{
		Kind:      KindSessionUpsert,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// NewSessionDelete creates an event signalling a deleted session.
func NewSessionDelete(id string) *SessionEvent {
	return &SessionEvent{
		Kind:      KindSessionDelete,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *SessionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// SessionEventFromJSON decodes an event and rejects unknown kinds so a bad
// message is dropped instead of requeued forever.
func SessionEventFromJSON(data []byte) (*SessionEvent, error) {
	var ev SessionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Kind {
	case KindSessionUpsert, KindSessionDelete:
	default:
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if ev.ID == "" {
		return nil, fmt.Errorf("event without session id")
	}
	return &ev, nil
}
