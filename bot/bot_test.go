package bot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magbay/LAN-Chat/domain/chat"
)

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// rolls returns the given values in order, then 1.
func rolls(values ...float64) func() float64 {
	return func() float64 {
		if len(values) == 0 {
			return 1
		}
		v := values[0]
		values = values[1:]
		return v
	}
}

func newTestBot(cfg Config, completer Completer) *Bot {
	cfg.Nickname = "calm-otter-42"
	cfg.FullName = "LanAI Bot"
	b := New(cfg, completer, slog.New(slog.DiscardHandler))
	b.roll = rolls()
	b.pick = func(int) int { return 0 }
	return b
}

func TestBot_Respond(t *testing.T) {
	tests := []struct {
		name     string
		msg      chat.Message
		rolls    []float64
		err      error
		want     []string
		complete int
	}{
		{"own message", chat.Message{Nickname: "calm-otter-42", Text: "calm"}, nil, nil, nil, 0},
		{"system message", chat.Message{Nickname: "System", Text: "otter"}, nil, nil, nil, 0},
		{"presence notice", chat.Message{Nickname: "bob", Text: "otter joined"}, nil, nil, nil, 0},
		{"nickname mention", chat.Message{Nickname: "bob", Text: "hi calm-otter-42"}, nil, nil, []string{"sure"}, 1},
		{"name part", chat.Message{Nickname: "bob", Text: "hey Otter what time is it?"}, nil, nil, []string{"sure"}, 1},
		{"full name", chat.Message{Nickname: "bob", Text: "ask lanai bot"}, nil, nil, []string{"sure"}, 1},
		{"unrelated", chat.Message{Nickname: "bob", Text: "lunch?"}, []float64{0.5, 0.5}, nil, nil, 0},
		{"random reply", chat.Message{Nickname: "bob", Text: "lunch?"}, []float64{0.05, 0.5}, nil, []string{"sure"}, 1},
		{"info message", chat.Message{Nickname: "bob", Text: "lunch?"}, []float64{0.5, 0.05}, nil, []string{infoMessages[0]}, 0},
		{"completion fails", chat.Message{Nickname: "bob", Text: "ask otter now"}, nil, errors.New("down"), nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{reply: "sure", err: tt.err}
			b := newTestBot(Config{ResponseProbability: 0.1, InfoProbability: 0.1}, completer)
			b.roll = rolls(tt.rolls...)

			assert.Equal(t, tt.want, b.respond(context.Background(), tt.msg))
			assert.Equal(t, tt.complete, completer.calls())
		})
	}
}

func TestBot_RespondPrompt(t *testing.T) {
	completer := &fakeCompleter{reply: "4"}
	b := newTestBot(Config{}, completer)

	b.respond(context.Background(), chat.Message{Nickname: "bob", Text: "otter what is 2+2?"})
	require.Len(t, completer.prompts, 1)
	assert.Equal(t, "otter what is 2+2?\n"+answerInstruction, completer.prompts[0])
}

func TestNew_RandomNickname(t *testing.T) {
	b := New(Config{}, &fakeCompleter{}, slog.New(slog.DiscardHandler))
	assert.Regexp(t, `^[a-z]+-[a-z]+-\d{1,2}$`, b.Nickname())
}

// newRoomServer accepts websocket connections and hands each one to serve.
func newRoomServer(t *testing.T, serve func(ws *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		serve(ws)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readFrame(ws *websocket.Conn) (chat.Frame, error) {
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		return chat.Frame{}, err
	}
	return chat.DecodeFrame(data)
}

func TestBot_RunAnswersMention(t *testing.T) {
	replies := make(chan string, 1)
	srv := newRoomServer(t, func(ws *websocket.Conn) {
		frame, err := readFrame(ws)
		if err != nil || frame.Type != chat.FrameJoin {
			return
		}
		var join struct{ Nickname string }
		_ = chat.DecodePayload(frame, &join)

		data, _ := chat.EncodeFrame(chat.FrameChat, chat.Message{
			Nickname:  "alice",
			Text:      "hey " + join.Nickname + " are you there?",
			Timestamp: time.Now().UTC(),
		})
		if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}

		frame, err = readFrame(ws)
		if err != nil || frame.Type != chat.FrameChat {
			return
		}
		var msg struct{ Text string }
		_ = chat.DecodePayload(frame, &msg)
		replies <- msg.Text

		// hold the connection until the bot leaves
		_, _, _ = ws.ReadMessage()
	})

	b := newTestBot(Config{ServerURL: srv.URL, ReconnectWait: time.Second}, &fakeCompleter{reply: "yes"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case text := <-replies:
		assert.Equal(t, "yes", text)
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not answer")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop")
	}
}

func TestBot_RunReconnects(t *testing.T) {
	var joins atomic.Int32
	srv := newRoomServer(t, func(ws *websocket.Conn) {
		if frame, err := readFrame(ws); err == nil && frame.Type == chat.FrameJoin {
			joins.Add(1)
		}
		// returning drops the connection
	})

	b := newTestBot(Config{ServerURL: srv.URL, ReconnectWait: 10 * time.Millisecond}, &fakeCompleter{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	assert.Eventually(t, func() bool { return joins.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop")
	}
}
