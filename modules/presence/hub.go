package presence

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-monolith/mono/pkg/types"

	"github.com/magbay/LAN-Chat/domain/chat"
)

type commandKind int

const (
	cmdRegister commandKind = iota
	cmdJoin
	cmdLeave
	cmdChat
	cmdTyping
)

type command struct {
	kind     commandKind
	client   *Client
	nickname string
	text     string
	state    bool
}

// Hub serializes everything connections ask of the room through one loop.
// Commands from one connection are applied in the order they were read.
type Hub struct {
	room     *Room
	clients  map[string]*Client // clientID -> Client
	commands chan command
	done     chan struct{}
	mu       sync.RWMutex
	logger   types.Logger
}

// NewHub creates a hub driving room.
func NewHub(room *Room, logger types.Logger) *Hub {
	h := &Hub{
		room:     room,
		clients:  make(map[string]*Client),
		commands: make(chan command, 256),
		done:     make(chan struct{}),
		logger:   logger,
	}
	room.OnOverflowEvict(h.dropClient)
	return h
}

// Run processes commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAllClients()
			close(h.done)
			return
		case cmd := <-h.commands:
			h.handle(cmd)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Register adds a connection. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	return h.submit(command{kind: cmdRegister, client: client})
}

// Unregister evicts the connection's session, if any, and forgets it.
// Calling it more than once is harmless.
func (h *Hub) Unregister(client *Client) {
	h.submit(command{kind: cmdLeave, client: client})
}

// HandleFrame decodes one inbound frame and queues the matching command.
// Malformed, unknown or rate-limited frames are dropped. Only chat frames are
// rate limited: a dropped typing frame would leave peers with a stale
// indicator, and the room only broadcasts typing changes anyway.
func (h *Hub) HandleFrame(client *Client, data []byte) {
	frame, err := chat.DecodeFrame(data)
	if err != nil {
		h.logger.Debug("Dropping malformed frame", "clientID", client.ID, "error", err)
		return
	}

	switch frame.Type {
	case chat.FrameJoin:
		var p chat.JoinPayload
		if err := chat.DecodePayload(frame, &p); err != nil || p.Nickname == nil {
			h.logger.Debug("Dropping join without nickname", "clientID", client.ID)
			return
		}
		h.submit(command{kind: cmdJoin, client: client, nickname: *p.Nickname})

	case chat.FrameChat:
		if !client.allowChat() {
			h.logger.Debug("Rate limited chat frame", "clientID", client.ID)
			return
		}
		var p chat.ChatPayload
		if err := chat.DecodePayload(frame, &p); err != nil || p.Text == nil || strings.TrimSpace(*p.Text) == "" {
			return
		}
		h.submit(command{kind: cmdChat, client: client, text: *p.Text})

	case chat.FrameTyping:
		var p chat.TypingPayload
		if err := chat.DecodePayload(frame, &p); err != nil || p.State == nil {
			return
		}
		h.submit(command{kind: cmdTyping, client: client, state: *p.State})

	default:
		h.logger.Debug("Dropping unknown frame", "clientID", client.ID, "type", frame.Type)
	}
}

// CloseClients closes every open connection. Each connection's own teardown
// then evicts its session through Unregister.
func (h *Hub) CloseClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.Close()
	}
}

// ClientCount returns the number of open connections, joined or not.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Room returns the room driven by this hub.
func (h *Hub) Room() *Room {
	return h.room
}

func (h *Hub) submit(cmd command) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.commands <- cmd:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) handle(cmd command) {
	client := cmd.client

	if cmd.kind == cmdLeave {
		h.room.Evict(client.ID)
		h.mu.Lock()
		delete(h.clients, client.ID)
		h.mu.Unlock()
		return
	}

	select {
	case <-client.Done():
		// closed connections get no further effect
		return
	default:
	}

	switch cmd.kind {
	case cmdRegister:
		h.mu.Lock()
		h.clients[client.ID] = client
		h.mu.Unlock()
		h.logger.Debug("Client registered", "clientID", client.ID)
	case cmdJoin:
		if _, err := h.room.Admit(client.ID, cmd.nickname, client); err != nil {
			if errors.Is(err, ErrAlreadyAdmitted) {
				h.logger.Debug("Ignoring repeated join", "clientID", client.ID)
				return
			}
			h.logger.Warn("Join failed", "clientID", client.ID, "error", err)
		}
	case cmdChat:
		h.room.BroadcastMessage(client.ID, cmd.text)
	case cmdTyping:
		h.room.SetTyping(client.ID, cmd.state)
	}
}

// dropClient closes a connection the room evicted for falling behind.
func (h *Hub) dropClient(clientID string) {
	h.mu.Lock()
	client, ok := h.clients[clientID]
	delete(h.clients, clientID)
	h.mu.Unlock()
	if ok {
		client.Close()
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for id, client := range clients {
		h.room.Evict(id)
		client.Close()
	}
}
