package presence

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-monolith/mono/pkg/types"

	"github.com/magbay/LAN-Chat/domain/chat"
)

// ErrAlreadyAdmitted is returned when a session joins twice.
var ErrAlreadyAdmitted = errors.New("session already admitted")

// Sink accepts encoded frames for one session. Enqueue must not block and
// reports false when the frame could not be queued.
type Sink interface {
	Enqueue(frame []byte) bool
}

// Observer is told about room changes after they were fanned out.
type Observer interface {
	PeerJoined(session chat.Session, peers int)
	PeerLeft(session chat.Session, peers int)
	MessageBroadcast(sessionID string, msg chat.Message, recipients int)
}

// RoomConfig tunes message handling.
type RoomConfig struct {
	// MaxMessageRunes truncates message text; zero disables truncation.
	MaxMessageRunes int
	// AnnouncePresence posts "<nick> joined" / "<nick> left" system messages.
	AnnouncePresence bool
	// Clock stamps messages. Defaults to time.Now.
	Clock func() time.Time
}

type member struct {
	session    chat.Session
	sink       Sink
	overflowed bool
}

type notice struct {
	kind       string
	session    chat.Session
	peers      int
	message    chat.Message
	recipients int
}

// Room owns the roster and typing state and is the single broadcast point.
// Every operation applies its state change and enqueues its fan-out while
// holding the room lock, so all sessions observe the same relative order.
type Room struct {
	mu       sync.Mutex
	members  map[string]*member
	order    []string // session IDs in join order
	lastTS   time.Time
	overflow []string

	cfg      RoomConfig
	observer Observer
	onEvict  func(sessionID string)
	logger   types.Logger
}

// NewRoom creates an empty room.
func NewRoom(cfg RoomConfig, logger types.Logger) *Room {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Room{
		members: make(map[string]*member),
		cfg:     cfg,
		logger:  logger,
	}
}

// SetObserver registers the observer for room changes.
func (r *Room) SetObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

// OnOverflowEvict registers a callback invoked for every session the room
// evicted because its outbound queue was full.
func (r *Room) OnOverflowEvict(fn func(sessionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

// Admit adds a session and broadcasts the new roster to everyone, the new
// session included. Nicknames are accepted as given.
func (r *Room) Admit(sessionID, nickname string, sink Sink) (chat.RosterSnapshot, error) {
	r.mu.Lock()
	if _, ok := r.members[sessionID]; ok {
		r.mu.Unlock()
		return chat.RosterSnapshot{}, fmt.Errorf("%w: %s", ErrAlreadyAdmitted, sessionID)
	}

	m := &member{session: chat.Session{ID: sessionID, Nickname: nickname}, sink: sink}
	r.members[sessionID] = m
	r.order = append(r.order, sessionID)

	snap := r.snapshotLocked()
	r.broadcastRosterLocked(snap)
	if r.cfg.AnnouncePresence {
		r.announceLocked(nickname + " joined")
	}
	notices := []notice{{kind: "joined", session: m.session, peers: snap.Count}}
	notices = append(notices, r.reapLocked()...)
	observer, onEvict := r.observer, r.onEvict
	r.mu.Unlock()

	r.logger.Info("Session admitted", "sessionID", sessionID, "nickname", nickname, "peers", snap.Count)
	dispatch(observer, onEvict, notices)
	return snap, nil
}

// Evict removes a session and broadcasts the new roster to the remaining
// sessions. Evicting an absent session is a no-op and returns false.
func (r *Room) Evict(sessionID string) (chat.RosterSnapshot, bool) {
	r.mu.Lock()
	session, ok := r.evictLocked(sessionID)
	if !ok {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, false
	}
	snap := r.snapshotLocked()
	notices := []notice{{kind: "left", session: session, peers: snap.Count}}
	notices = append(notices, r.reapLocked()...)
	snap = r.snapshotLocked()
	observer, onEvict := r.observer, r.onEvict
	r.mu.Unlock()

	r.logger.Info("Session evicted", "sessionID", sessionID, "nickname", session.Nickname, "peers", snap.Count)
	dispatch(observer, onEvict, notices)
	return snap, true
}

// SetTyping records a session's typing state. A change is broadcast to every
// other session; an unchanged state or an unknown session broadcasts nothing.
func (r *Room) SetTyping(sessionID string, state bool) bool {
	r.mu.Lock()
	m, ok := r.members[sessionID]
	if !ok || m.session.Typing == state {
		r.mu.Unlock()
		return false
	}
	m.session.Typing = state
	r.broadcastTypingLocked(m.session.Nickname, state, sessionID)
	notices := r.reapLocked()
	observer, onEvict := r.observer, r.onEvict
	r.mu.Unlock()

	dispatch(observer, onEvict, notices)
	return true
}

// BroadcastMessage stamps text and delivers it to every session, the sender
// included. Blank text and unknown senders are ignored. A sender that was
// typing has its state cleared and peers are told.
func (r *Room) BroadcastMessage(sessionID, text string) (chat.Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, false
	}

	r.mu.Lock()
	m, ok := r.members[sessionID]
	if !ok {
		r.mu.Unlock()
		return chat.Message{}, false
	}

	msg := chat.Message{
		Nickname:  m.session.Nickname,
		Text:      truncateRunes(text, r.cfg.MaxMessageRunes),
		Timestamp: r.nowLocked(),
	}
	recipients := r.broadcastLocked(chat.FrameChat, msg, "")
	if m.session.Typing {
		m.session.Typing = false
		r.broadcastTypingLocked(m.session.Nickname, false, sessionID)
	}
	notices := []notice{{kind: "message", session: m.session, message: msg, recipients: recipients}}
	notices = append(notices, r.reapLocked()...)
	observer, onEvict := r.observer, r.onEvict
	r.mu.Unlock()

	dispatch(observer, onEvict, notices)
	return msg, true
}

// Snapshot returns the current roster.
func (r *Room) Snapshot() chat.RosterSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Session returns a copy of one session.
func (r *Room) Session(sessionID string) (chat.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sessionID]
	if !ok {
		return chat.Session{}, false
	}
	return m.session, true
}

// Len returns the number of admitted sessions.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) evictLocked(sessionID string) (chat.Session, bool) {
	m, ok := r.members[sessionID]
	if !ok {
		return chat.Session{}, false
	}
	delete(r.members, sessionID)
	for i, id := range r.order {
		if id == sessionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if m.session.Typing {
		r.broadcastTypingLocked(m.session.Nickname, false, "")
	}
	if r.cfg.AnnouncePresence {
		r.announceLocked(m.session.Nickname + " left")
	}
	r.broadcastRosterLocked(r.snapshotLocked())
	return m.session, true
}

// reapLocked evicts sessions whose queue overflowed during the current
// operation. Evictions can overflow further queues, so it loops until stable.
func (r *Room) reapLocked() []notice {
	var notices []notice
	for len(r.overflow) > 0 {
		id := r.overflow[0]
		r.overflow = r.overflow[1:]
		session, ok := r.evictLocked(id)
		if !ok {
			continue
		}
		r.logger.Warn("Evicting slow session", "sessionID", id, "nickname", session.Nickname)
		notices = append(notices, notice{kind: "overflow", session: session, peers: len(r.members)})
	}
	return notices
}

func (r *Room) snapshotLocked() chat.RosterSnapshot {
	nicknames := make([]string, 0, len(r.order))
	for _, id := range r.order {
		nicknames = append(nicknames, r.members[id].session.Nickname)
	}
	return chat.NewRosterSnapshot(nicknames)
}

func (r *Room) broadcastRosterLocked(snap chat.RosterSnapshot) {
	r.broadcastLocked(chat.FramePeerCount, snap.Count, "")
	r.broadcastLocked(chat.FrameUserList, snap.Nicknames, "")
}

func (r *Room) broadcastTypingLocked(nickname string, state bool, exclude string) {
	r.broadcastLocked(chat.FrameTyping, chat.TypingEvent{Nickname: nickname, State: state}, exclude)
}

func (r *Room) announceLocked(text string) {
	r.broadcastLocked(chat.FrameChat, chat.Message{
		Nickname:  chat.SystemNickname,
		Text:      text,
		Timestamp: r.nowLocked(),
	}, "")
}

// broadcastLocked encodes one frame and queues it for every member in join
// order, skipping exclude. It returns the number of sessions that got it.
func (r *Room) broadcastLocked(frameType string, payload any, exclude string) int {
	frame, err := chat.EncodeFrame(frameType, payload)
	if err != nil {
		r.logger.Error("Failed to encode frame", "type", frameType, "error", err)
		return 0
	}

	delivered := 0
	for _, id := range r.order {
		if id == exclude {
			continue
		}
		m := r.members[id]
		if m.overflowed {
			continue
		}
		if !m.sink.Enqueue(frame) {
			m.overflowed = true
			r.overflow = append(r.overflow, id)
			continue
		}
		delivered++
	}
	return delivered
}

// nowLocked returns the clock in UTC, never earlier than a previous stamp.
func (r *Room) nowLocked() time.Time {
	now := r.cfg.Clock().UTC()
	if now.Before(r.lastTS) {
		now = r.lastTS
	}
	r.lastTS = now
	return now
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func dispatch(observer Observer, onEvict func(string), notices []notice) {
	for _, n := range notices {
		switch n.kind {
		case "joined":
			if observer != nil {
				observer.PeerJoined(n.session, n.peers)
			}
		case "left":
			if observer != nil {
				observer.PeerLeft(n.session, n.peers)
			}
		case "overflow":
			if observer != nil {
				observer.PeerLeft(n.session, n.peers)
			}
			if onEvict != nil {
				onEvict(n.session.ID)
			}
		case "message":
			if observer != nil {
				observer.MessageBroadcast(n.session.ID, n.message, n.recipients)
			}
		}
	}
}
