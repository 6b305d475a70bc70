package core

import (
	"encoding/json"
	"fmt"
)

// EventKind names a wire event. Incoming kinds form a closed set; the
// dispatcher switches over them exhaustively, so adding a signal type
// is a compile-visible change rather than a new ad-hoc string.
type EventKind string

const (
	// client -> server
	EventUserOnline   EventKind = "user-online"
	EventJoinRoom     EventKind = "join-room"
	EventSendMessage  EventKind = "send-message"
	EventCallUser     EventKind = "call-user"
	EventAcceptCall   EventKind = "accept-call"
	EventICECandidate EventKind = "ice-candidate" // also server -> client
	EventEndCall      EventKind = "end-call"
	EventPing         EventKind = "ping"

	// server -> client
	EventUserStatus     EventKind = "update-user-status"
	EventReceiveMessage EventKind = "receive-message"
	EventIncomingCall   EventKind = "incoming-call"
	EventCallAccepted   EventKind = "call-accepted"
	EventCallEnded      EventKind = "call-ended"
	EventCallError      EventKind = "call-error"
	EventPong           EventKind = "pong"
)

// Envelope is the top-level wire format: one JSON object per WebSocket
// text message, event name plus raw payload.
type Envelope struct {
	Event EventKind       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode splits a raw frame into its kind and payload bytes.
func Decode(data []byte) (EventKind, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("bad envelope: %w", err)
	}
	if env.Event == "" {
		return "", nil, fmt.Errorf("envelope without event name")
	}
	return env.Event, env.Data, nil
}

// Encode builds a wire frame for an outbound event. A nil payload
// produces an envelope with no data field (call-ended carries none).
func Encode(kind EventKind, payload any) (Frame, error) {
	env := Envelope{Event: kind}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
		}
		env.Data = raw
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", kind, err)
	}
	return Frame(b), nil
}
