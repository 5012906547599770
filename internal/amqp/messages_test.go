package amqp

import (
	"testing"
	"time"
)

func TestAlertEventMessageRoundTrip(t *testing.T) {
	msg := NewAlertEventMessage("n42", "alice", KindBudgetAlert)
	if msg.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := AlertEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.NotificationID != "n42" || got.OwnerID != "alice" || got.Kind != KindBudgetAlert {
		t.Fatalf("unexpected message: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Fatalf("timestamp drifted: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestAlertEventMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := AlertEventMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}
