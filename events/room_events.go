package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// PeerJoinedEvent is emitted after a session was admitted to the room.
type PeerJoinedEvent struct {
	SessionID string    `json:"session_id"`
	Nickname  string    `json:"nickname"`
	PeerCount int       `json:"peer_count"`
	Timestamp time.Time `json:"timestamp"`
}

// PeerLeftEvent is emitted after a session was evicted from the room.
type PeerLeftEvent struct {
	SessionID string    `json:"session_id"`
	Nickname  string    `json:"nickname"`
	PeerCount int       `json:"peer_count"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageBroadcastEvent is emitted after a chat message was fanned out.
type MessageBroadcastEvent struct {
	SessionID  string    `json:"session_id"`
	Nickname   string    `json:"nickname"`
	TextLength int       `json:"text_length"`
	Recipients int       `json:"recipients"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event definitions for the room domain.
var (
	PeerJoinedV1 = helper.EventDefinition[PeerJoinedEvent](
		"presence",
		"PeerJoined",
		"v1",
	)

	PeerLeftV1 = helper.EventDefinition[PeerLeftEvent](
		"presence",
		"PeerLeft",
		"v1",
	)

	MessageBroadcastV1 = helper.EventDefinition[MessageBroadcastEvent](
		"presence",
		"MessageBroadcast",
		"v1",
	)
)
