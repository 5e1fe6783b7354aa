package amqp

import (
	"encoding/json"
	"testing"
)

func TestSessionEventRoundTrip(t *testing.T) {
	ev := NewSessionUpsert("abc-123", 2)
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := SessionEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != KindSessionUpsert || got.ID != "abc-123" || got.Version != 2 {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestSessionDeleteEvent(t *testing.T) {
	ev := NewSessionDelete("abc-123")
	if ev.Kind != KindSessionDelete {
		t.Fatalf("expected delete kind, got %q", ev.Kind)
	}
	if ev.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}
}

func TestSessionEventFromJSONRejectsGarbage(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{"not json", []byte("nope")},
		{"unknown kind", mustJSON(t, SessionEvent{Kind: "session.exploded", ID: "x"})},
		{"missing id", mustJSON(t, SessionEvent{Kind: KindSessionUpsert})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := SessionEventFromJSON(tc.body); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
