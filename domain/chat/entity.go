package chat

import "time"

// SystemNickname is the sender name used for server-generated announcements.
const SystemNickname = "system"

// Session is one connected participant as seen by the room.
type Session struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Typing   bool   `json:"typing"`
}

// Message is a chat line after the server stamped it.
type Message struct {
	Nickname  string    `json:"nickname"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"ts"`
}

// TypingEvent reports a change of a peer's typing state.
type TypingEvent struct {
	Nickname string `json:"nickname"`
	State    bool   `json:"state"`
}

// RosterSnapshot is the live roster in join order.
type RosterSnapshot struct {
	Nicknames []string `json:"nicknames"`
	Count     int      `json:"count"`
}

// NewRosterSnapshot builds a snapshot whose count always matches its nicknames.
func NewRosterSnapshot(nicknames []string) RosterSnapshot {
	if nicknames == nil {
		nicknames = []string{}
	}
	return RosterSnapshot{Nicknames: nicknames, Count: len(nicknames)}
}
