package amqp

import (
	"encoding/json"
	"time"
)

// FoodLogSyncMessage asks the diary worker to export one food-log entry.
// It carries only the entry ID; the worker fetches the full entry from the
// database so the queue never holds stale nutrition data.
type FoodLogSyncMessage struct {
	EntryID   int64     `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFoodLogSyncMessage creates a sync message for the given entry.
func NewFoodLogSyncMessage(entryID int64) *FoodLogSyncMessage {
	return &FoodLogSyncMessage{
		EntryID:   entryID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *FoodLogSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FoodLogSyncMessageFromJSON creates a message from JSON bytes
func FoodLogSyncMessageFromJSON(data []byte) (*FoodLogSyncMessage, error) {
	var msg FoodLogSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
