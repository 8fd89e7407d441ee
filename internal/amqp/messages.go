package amqp

import (
	"encoding/json"
	"time"
)

// MeetingSavedMessage announces that a meeting's people and history were
// persisted. It carries only the entry code; the worker fetches the full
// document from storage so it always reports the latest saved state.
type MeetingSavedMessage struct {
	EntryCode string    `json:"entryCode"`
	UpdatedAt time.Time `json:"updatedAt"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMeetingSavedMessage creates a saved-meeting announcement.
func NewMeetingSavedMessage(entryCode string, updatedAt time.Time) *MeetingSavedMessage {
	return &MeetingSavedMessage{
		EntryCode: entryCode,
		UpdatedAt: updatedAt,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *MeetingSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MeetingSavedMessageFromJSON creates a message from JSON bytes.
func MeetingSavedMessageFromJSON(data []byte) (*MeetingSavedMessage, error) {
	var msg MeetingSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
