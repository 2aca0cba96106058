package realtime

import (
	"encoding/json"

	"convohub/internal/domain/entity"
)

const (
	// EventOnlineUsers carries the full online-user-id array. Pushed to every
	// connection on each presence change.
	EventOnlineUsers = "online_users"
	// EventNewMessage carries a full persisted message record. Pushed to the
	// recipient's connection only.
	EventNewMessage = "new_message"
)

// Event is the single envelope pushed over the delivery channel.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func presenceEvent(online []string) Event {
	return Event{Type: EventOnlineUsers, Payload: online}
}

func messageEvent(m *entity.Message) Event {
	return Event{Type: EventNewMessage, Payload: m}
}

func marshalEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}
