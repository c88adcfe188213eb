package activity

import (
	"sync"
	"time"
)

// Stats is a point-in-time view of room activity since startup.
type Stats struct {
	Joins         int       `json:"joins"`
	Leaves        int       `json:"leaves"`
	Messages      int       `json:"messages"`
	MessageRunes  int       `json:"message_runes"`
	Deliveries    int       `json:"deliveries"`
	PeakPeers     int       `json:"peak_peers"`
	CurrentPeers  int       `json:"current_peers"`
	LastMessageAt time.Time `json:"last_message_at"`
	StartedAt     time.Time `json:"started_at"`
}

// Tracker accumulates Stats from room events.
type Tracker struct {
	mu    sync.RWMutex
	stats Stats
}

// NewTracker creates a tracker whose uptime starts at now.
func NewTracker(now time.Time) *Tracker {
	return &Tracker{stats: Stats{StartedAt: now.UTC()}}
}

// RecordJoin counts an admitted peer.
func (t *Tracker) RecordJoin(peers int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Joins++
	t.setPeersLocked(peers)
}

// RecordLeave counts an evicted peer.
func (t *Tracker) RecordLeave(peers int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Leaves++
	t.setPeersLocked(peers)
}

// RecordMessage counts a broadcast message.
func (t *Tracker) RecordMessage(runes, recipients int, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Messages++
	t.stats.MessageRunes += runes
	t.stats.Deliveries += recipients
	if at.After(t.stats.LastMessageAt) {
		t.stats.LastMessageAt = at
	}
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

func (t *Tracker) setPeersLocked(peers int) {
	t.stats.CurrentPeers = peers
	if peers > t.stats.PeakPeers {
		t.stats.PeakPeers = peers
	}
}
