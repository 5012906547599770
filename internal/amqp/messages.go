package amqp

import (
	"encoding/json"
	"time"
)

// AlertEventMessage is the lightweight event published when a notification is
// created. It carries only identifiers; consumers fetch the full record from
// the store.
type AlertEventMessage struct {
	NotificationID string    `json:"notification_id"`
	OwnerID        string    `json:"owner_id"`
	Kind           string    `json:"kind"`
	Timestamp      time.Time `json:"timestamp"`
}

// Event kinds carried on the alert queue.
const (
	KindBudgetAlert   = "budget_alert"
	KindGoalCompleted = "goal_completed"
)

func NewAlertEventMessage(notificationID, ownerID, kind string) *AlertEventMessage {
	return &AlertEventMessage{
		NotificationID: notificationID,
		OwnerID:        ownerID,
		Kind:           kind,
		Timestamp:      time.Now(),
	}
}

func (m *AlertEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlertEventMessageFromJSON(data []byte) (*AlertEventMessage, error) {
	var msg AlertEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
