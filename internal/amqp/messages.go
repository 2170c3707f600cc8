package amqp

import (
	"encoding/json"
	"time"
)

// LaunchEventMessage is the audit record published for every launch mutation.
// The worker treats it as self-contained; it only goes back to the database
// when it needs a fresh balance.
type LaunchEventMessage struct {
	Event     string    `json:"event"` // launch.created, launch.updated, launch.deleted
	LaunchID  int64     `json:"launch_id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLaunchEventMessage stamps a message with the current time.
func NewLaunchEventMessage(event string, launchID, userID int64, status string) *LaunchEventMessage {
	return &LaunchEventMessage{
		Event:     event,
		LaunchID:  launchID,
		UserID:    userID,
		Status:    status,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LaunchEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LaunchEventMessageFromJSON parses a message from JSON bytes.
func LaunchEventMessageFromJSON(data []byte) (*LaunchEventMessage, error) {
	var msg LaunchEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
