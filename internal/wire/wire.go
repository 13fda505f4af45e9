// Package wire defines the realtime protocol spoken over the websocket:
// every frame is a JSON Envelope naming an event and carrying its payload.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Event names. connect and disconnect are local lifecycle events and never
// travel on the wire.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
	EventError      = "error"
	EventMessage    = "message"
	EventJoin       = "join"
	EventLeave      = "leave"
	EventJoined     = "joined"
	EventLeft       = "left"
)

// Limits shared by every path that accepts chat messages. Lengths count
// characters, not bytes.
const (
	MaxRoomLen    = 100
	MaxMessageLen = 4000
)

// ErrInvalidEnvelope is returned for frames without an event name.
var ErrInvalidEnvelope = errors.New("wire: invalid envelope")

// Envelope is one realtime frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomPayload is the body of join, leave, joined and left.
type RoomPayload struct {
	Room string `json:"room"`
}

// MessagePayload is the body of an outbound message event.
type MessagePayload struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// MessageEvent is the body of an inbound message event, fanned out to
// everyone in the room.
type MessageEvent struct {
	ID         uuid.UUID  `json:"id"`
	Room       string     `json:"room"`
	SenderID   *uuid.UUID `json:"sender_id,omitempty"`
	SenderName string     `json:"sender_name,omitempty"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
}

// ErrorPayload is the body of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Encode marshals payload into an envelope frame. A nil payload produces an
// envelope without data.
func Encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("wire.Encode: %s: %w", event, err)
		}
		env.Data = data
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("wire.Encode: %s: %w", event, err)
	}
	return frame, nil
}

// Decode parses a frame into an envelope.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("wire.Decode: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("wire.Decode: %w", ErrInvalidEnvelope)
	}
	return env, nil
}

// Payload unmarshals the envelope data into out.
func (e Envelope) Payload(out any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("wire.Envelope.Payload: %s: %w", e.Event, ErrInvalidEnvelope)
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("wire.Envelope.Payload: %s: %w", e.Event, err)
	}
	return nil
}

// NormalizeRoom trims room and reports whether it is a usable room name.
func NormalizeRoom(room string) (string, bool) {
	room = strings.TrimSpace(room)
	if room == "" || utf8.RuneCountInString(room) > MaxRoomLen {
		return "", false
	}
	return room, true
}

// ValidMessage reports whether text is non-blank and within MaxMessageLen.
func ValidMessage(text string) bool {
	return strings.TrimSpace(text) != "" && utf8.RuneCountInString(text) <= MaxMessageLen
}
