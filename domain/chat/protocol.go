package chat

import (
	"encoding/json"
	"fmt"
)

// Frame types exchanged over the websocket.
const (
	FrameJoin      = "join"
	FrameChat      = "chat"
	FrameTyping    = "typing"
	FramePeerCount = "peerCount"
	FrameUserList  = "user_list"
)

// Frame is the envelope of every websocket text frame.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload is sent by a client to enter the room. A nil Nickname means
// the field was missing.
type JoinPayload struct {
	Nickname *string `json:"nickname"`
}

// ChatPayload is sent by a client to post a message.
type ChatPayload struct {
	Text *string `json:"text"`
}

// TypingPayload is sent by a client when its typing state changes.
type TypingPayload struct {
	State *bool `json:"state"`
}

// EncodeFrame marshals payload into a frame of the given type.
func EncodeFrame(frameType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", frameType, err)
	}
	data, err := json.Marshal(Frame{Type: frameType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", frameType, err)
	}
	return data, nil
}

// DecodeFrame parses the envelope and leaves the payload raw.
func DecodeFrame(data []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if frame.Type == "" {
		return Frame{}, fmt.Errorf("decode frame: missing type")
	}
	return frame, nil
}

// DecodePayload unmarshals a frame payload into target.
func DecodePayload(frame Frame, target any) error {
	if len(frame.Payload) == 0 {
		return fmt.Errorf("decode %s payload: empty", frame.Type)
	}
	if err := json.Unmarshal(frame.Payload, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", frame.Type, err)
	}
	return nil
}
