package ws

import "time"

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady = "ready"
	MsgPong  = "pong"
)

// Event is the envelope of every server message.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

// inbound is the only shape clients may send.
type inbound struct {
	Type string `json:"type"`
}
