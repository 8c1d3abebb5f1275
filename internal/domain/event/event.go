package event

import "encoding/json"

// Event is a domain fact published to its own stream. EventType names the stream
// suffix and EventValue is the JSON payload stored under event_data.
type Event interface {
	EventType() string
	EventValue() ([]byte, error)
}

// DefaultEventValue encodes an event payload as JSON
func DefaultEventValue(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes an event_data payload into a concrete event type
func UnmarshalEvent[T Event](data []byte) (T, error) {
	var e T
	err := json.Unmarshal(data, &e)
	return e, err
}
