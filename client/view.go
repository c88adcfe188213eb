package client

import "github.com/magbay/LAN-Chat/domain/chat"

// Entry is one rendered line of the conversation.
type Entry struct {
	Message chat.Message          `json:"message"`
	Spans   []chat.ClassifiedSpan `json:"spans"`
	// Mine is decided by nickname equality, so two peers sharing a nickname
	// both see each other's messages as their own.
	Mine bool `json:"mine"`
}

// View is the state a participant displays. It is not safe for concurrent
// use; events are applied one at a time in arrival order.
type View struct {
	Self    string
	Roster  []string
	Count   int
	Typing  string
	Entries []Entry

	// MaxEntries bounds the history kept; 0 keeps everything.
	MaxEntries int
}

// NewView creates an empty view for the participant named self.
func NewView(self string) *View {
	return &View{Self: self, Roster: []string{}}
}

// Apply reduces one event into the view.
func (v *View) Apply(ev Event) {
	switch e := ev.(type) {
	case RosterEvent:
		v.Roster = append([]string(nil), e.Nicknames...)
		v.Count = len(e.Nicknames)
	case PeerCountEvent:
		v.Count = e.Count
	case TypingEvent:
		// last writer wins: one indicator line for the whole room
		if e.State {
			v.Typing = e.Nickname + " is typing..."
		} else {
			v.Typing = ""
		}
	case MessageEvent:
		v.Entries = append(v.Entries, Entry{
			Message: e.Message,
			Spans:   chat.Classify(e.Text),
			Mine:    e.Nickname == v.Self,
		})
		if v.MaxEntries > 0 && len(v.Entries) > v.MaxEntries {
			v.Entries = append([]Entry(nil), v.Entries[len(v.Entries)-v.MaxEntries:]...)
		}
	}
}
