package types

import "github.com/matchguru/match-rooms-backend/internal/engine"

// ClientMessage is what a websocket subscriber sends.
//
// PostMessage:
//   text: string
//
// CastVote:
//   outcome: "p1" | "x" | "p2"
type ClientMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

// ServerMessage is what the room feed pushes back.
//
// RoomSnapshot carries the full versioned room state on join and after every
// accepted command. Error is delivered only to the offending client.
type ServerMessage struct {
	Type    string        `json:"type"` // "RoomSnapshot" | "Error"
	Version int           `json:"version,omitempty"`
	State   *engine.State `json:"state,omitempty"`
	Error   string        `json:"error,omitempty"`
}
