package dto

import "time"

// Inbound

// InboundEvent is what every intake path (webhook, websocket, NATS bridge)
// hands to the conversation router. Any combination of the optional parts
// may be present.
type InboundEvent struct {
	EventId          string           `json:"event_id,omitempty"`
	SenderId         string           `json:"sender_id" validate:"required,max=256"`
	Text             *string          `json:"text,omitempty"`
	SelectedOptionId *string          `json:"selected_option_id,omitempty"`
	Location         *LocationPayload `json:"location,omitempty"`
	ReceivedAt       time.Time        `json:"received_at"`
}

type LocationPayload struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// ChatFrame is the client frame on the websocket. The sender comes from the
// connection's token, never from the frame.
type ChatFrame struct {
	Text             *string          `json:"text,omitempty"`
	SelectedOptionId *string          `json:"selected_option_id,omitempty"`
	Location         *LocationPayload `json:"location,omitempty"`
}

type WebhookAcceptedResponse struct {
	EventId string `json:"event_id"`
}

// Outbound

type MessageKind string

const (
	MessageKindText     MessageKind = "text"
	MessageKindLocation MessageKind = "location"
	MessageKindList     MessageKind = "list"
)

type OutboundMessage struct {
	Id       string       `json:"id"`
	Kind     MessageKind  `json:"kind"`
	Text     string       `json:"text,omitempty"`
	Location *LocationPin `json:"location,omitempty"`
	List     *ListMessage `json:"list,omitempty"`
}

type LocationPin struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

// ListMessage is a single-select menu.
type ListMessage struct {
	Title      string        `json:"title"`
	Text       string        `json:"text"`
	Footer     string        `json:"footer,omitempty"`
	ButtonText string        `json:"button_text"`
	Sections   []ListSection `json:"sections"`
}

type ListSection struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}

type ListRow struct {
	RowId       string `json:"row_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// OutboundEnvelope addresses a message to one chat identity. It is the
// payload on the NATS bridge and on the redis fanout channel.
type OutboundEnvelope struct {
	RecipientId string          `json:"recipient_id"`
	Message     OutboundMessage `json:"message"`
	SentAt      time.Time       `json:"sent_at"`
}
