package notify

import (
	"encoding/json"
	"time"

	"finflow/internal/store"
)

// ChangeMessage is the wire form of a store change event. Consumers
// re-read the store if they need the full records.
type ChangeMessage struct {
	Op        store.Op  `json:"op"`
	Count     int       `json:"count"`
	IDs       []int64   `json:"ids,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(ev store.Event) *ChangeMessage {
	return &ChangeMessage{
		Op:        ev.Op,
		Count:     ev.Count,
		IDs:       ev.IDs,
		Timestamp: time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
