package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event defines the contract for everything that crosses the NATS bridge.
type Event interface {
	// EventType returns the subject suffix (e.g. "inbound_message").
	EventType() string

	// Payload returns the JSON encoded body.
	Payload() []byte

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       json.RawMessage
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() []byte {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewJSONEvent encodes v as the event body.
func NewJSONEvent(eventType string, v interface{}) (BaseEvent, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return BaseEvent{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}, nil
}

// Decode unmarshals the event body into v.
func Decode(e Event, v interface{}) error {
	if err := json.Unmarshal(e.Payload(), v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.EventType(), err)
	}
	return nil
}
