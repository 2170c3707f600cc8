package amqp

import (
	"testing"
)

func TestNewLaunchEventMessage(t *testing.T) {
	msg := NewLaunchEventMessage("launch.created", 7, 1, "PENDING")

	if msg.Event != "launch.created" {
		t.Errorf("unexpected event %q", msg.Event)
	}
	if msg.LaunchID != 7 || msg.UserID != 1 {
		t.Errorf("unexpected ids %d/%d", msg.LaunchID, msg.UserID)
	}
	if msg.Status != "PENDING" {
		t.Errorf("unexpected status %q", msg.Status)
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected timestamp to be stamped")
	}
}

func TestLaunchEventMessageRoundTrip(t *testing.T) {
	original := NewLaunchEventMessage("launch.updated", 7, 1, "SETTLED")

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	parsed, err := LaunchEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Event != original.Event || parsed.LaunchID != original.LaunchID ||
		parsed.UserID != original.UserID || parsed.Status != original.Status {
		t.Errorf("round trip mismatch: %+v vs %+v", parsed, original)
	}
}

func TestLaunchEventMessageFromJSONMalformed(t *testing.T) {
	if _, err := LaunchEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
