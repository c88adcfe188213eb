// Package client is the Go side of a chat participant: it decodes server
// frames into events, reduces them into a View and talks to the server over
// websocket and HTTP.
package client

import (
	"errors"
	"fmt"

	"github.com/magbay/LAN-Chat/domain/chat"
)

// ErrUnknownEvent is returned by DecodeEvent for frame types a client does not handle.
var ErrUnknownEvent = errors.New("unknown event")

// Event is one server to client notification.
type Event interface {
	isEvent()
}

// RosterEvent replaces the displayed roster.
type RosterEvent struct {
	Nicknames []string
}

// PeerCountEvent updates the displayed roster size.
type PeerCountEvent struct {
	Count int
}

// TypingEvent sets or clears the typing indicator.
type TypingEvent struct {
	chat.TypingEvent
}

// MessageEvent carries a chat message.
type MessageEvent struct {
	chat.Message
}

func (RosterEvent) isEvent()    {}
func (PeerCountEvent) isEvent() {}
func (TypingEvent) isEvent()    {}
func (MessageEvent) isEvent()   {}

// DecodeEvent parses one server frame.
func DecodeEvent(data []byte) (Event, error) {
	frame, err := chat.DecodeFrame(data)
	if err != nil {
		return nil, err
	}

	switch frame.Type {
	case chat.FrameUserList:
		var users []string
		if err := chat.DecodePayload(frame, &users); err != nil {
			return nil, err
		}
		if users == nil {
			users = []string{}
		}
		return RosterEvent{Nicknames: users}, nil
	case chat.FramePeerCount:
		var count int
		if err := chat.DecodePayload(frame, &count); err != nil {
			return nil, err
		}
		return PeerCountEvent{Count: count}, nil
	case chat.FrameTyping:
		var ev chat.TypingEvent
		if err := chat.DecodePayload(frame, &ev); err != nil {
			return nil, err
		}
		return TypingEvent{ev}, nil
	case chat.FrameChat:
		var msg chat.Message
		if err := chat.DecodePayload(frame, &msg); err != nil {
			return nil, err
		}
		return MessageEvent{msg}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, frame.Type)
	}
}

// Client to server frames.
func encodeJoin(nickname string) ([]byte, error) {
	return chat.EncodeFrame(chat.FrameJoin, map[string]string{"nickname": nickname})
}

func encodeChat(text string) ([]byte, error) {
	return chat.EncodeFrame(chat.FrameChat, map[string]string{"text": text})
}

func encodeTyping(state bool) ([]byte, error) {
	return chat.EncodeFrame(chat.FrameTyping, map[string]bool{"state": state})
}

