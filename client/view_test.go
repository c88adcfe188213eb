package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magbay/LAN-Chat/domain/chat"
)

func mustEncode(t *testing.T, frameType string, payload any) []byte {
	t.Helper()
	data, err := chat.EncodeFrame(frameType, payload)
	require.NoError(t, err)
	return data
}

func TestDecodeEvent(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		data    []byte
		want    Event
		wantErr error
	}{
		{
			name: "user list",
			data: mustEncode(t, chat.FrameUserList, []string{"alice", "bob"}),
			want: RosterEvent{Nicknames: []string{"alice", "bob"}},
		},
		{
			name: "null user list",
			data: []byte(`{"type":"user_list","payload":null}`),
			want: RosterEvent{Nicknames: []string{}},
		},
		{
			name: "peer count",
			data: mustEncode(t, chat.FramePeerCount, 2),
			want: PeerCountEvent{Count: 2},
		},
		{
			name: "typing",
			data: mustEncode(t, chat.FrameTyping, chat.TypingEvent{Nickname: "bob", State: true}),
			want: TypingEvent{chat.TypingEvent{Nickname: "bob", State: true}},
		},
		{
			name: "chat",
			data: mustEncode(t, chat.FrameChat, chat.Message{Nickname: "alice", Text: "hi", Timestamp: ts}),
			want: MessageEvent{chat.Message{Nickname: "alice", Text: "hi", Timestamp: ts}},
		},
		{
			name:    "unknown",
			data:    mustEncode(t, "shout", "x"),
			wantErr: ErrUnknownEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEvent(tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeEvent([]byte("nope"))
	assert.Error(t, err)
	_, err = DecodeEvent([]byte(`{"type":"peerCount","payload":"two"}`))
	assert.Error(t, err)
}

func TestView_RosterReplacesWholesale(t *testing.T) {
	v := NewView("alice")

	v.Apply(RosterEvent{Nicknames: []string{"alice", "bob", "carol"}})
	assert.Equal(t, []string{"alice", "bob", "carol"}, v.Roster)
	assert.Equal(t, 3, v.Count)

	v.Apply(RosterEvent{Nicknames: []string{"carol"}})
	assert.Equal(t, []string{"carol"}, v.Roster)
	assert.Equal(t, 1, v.Count)

	v.Apply(PeerCountEvent{Count: 4})
	assert.Equal(t, 4, v.Count)
	assert.Equal(t, []string{"carol"}, v.Roster)
}

func TestView_TypingLastWriterWins(t *testing.T) {
	v := NewView("alice")

	v.Apply(TypingEvent{chat.TypingEvent{Nickname: "bob", State: true}})
	assert.Equal(t, "bob is typing...", v.Typing)

	v.Apply(TypingEvent{chat.TypingEvent{Nickname: "carol", State: true}})
	assert.Equal(t, "carol is typing...", v.Typing)

	// bob stopping clears the single indicator even though carol set it
	v.Apply(TypingEvent{chat.TypingEvent{Nickname: "bob", State: false}})
	assert.Empty(t, v.Typing)
}

func TestView_MessagesAreClassifiedAndAttributed(t *testing.T) {
	v := NewView("alice")

	v.Apply(MessageEvent{chat.Message{Nickname: "alice", Text: "see http://x/a.png"}})
	v.Apply(MessageEvent{chat.Message{Nickname: "bob", Text: "visit http://x/page"}})

	require.Len(t, v.Entries, 2)
	assert.True(t, v.Entries[0].Mine)
	assert.Equal(t, []chat.ClassifiedSpan{chat.PlainText("see "), chat.ImageRef("http://x/a.png")}, v.Entries[0].Spans)
	assert.False(t, v.Entries[1].Mine)
	assert.Equal(t, []chat.ClassifiedSpan{chat.PlainText("visit "), chat.Link("http://x/page", "http://x/page")}, v.Entries[1].Spans)
}

func TestView_SameNicknameCountsAsMine(t *testing.T) {
	v := NewView("alice")
	v.Apply(MessageEvent{chat.Message{Nickname: "alice", Text: "from the other alice"}})
	assert.True(t, v.Entries[0].Mine)
}

func TestView_MaxEntries(t *testing.T) {
	v := NewView("alice")
	v.MaxEntries = 2
	for _, text := range []string{"one", "two", "three"} {
		v.Apply(MessageEvent{chat.Message{Nickname: "bob", Text: text}})
	}
	require.Len(t, v.Entries, 2)
	assert.Equal(t, "two", v.Entries[0].Message.Text)
	assert.Equal(t, "three", v.Entries[1].Message.Text)
}

func TestView_StatusLine(t *testing.T) {
	v := NewView("alice")
	v.Apply(RosterEvent{Nicknames: []string{"alice", "bob"}})
	assert.Equal(t, "2 online: alice, bob", v.StatusLine())

	v.Apply(TypingEvent{chat.TypingEvent{Nickname: "bob", State: true}})
	assert.Equal(t, "2 online: alice, bob | bob is typing...", v.StatusLine())
}
