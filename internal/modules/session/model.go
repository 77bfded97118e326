// README: Conversation session owning its turn history and preference state.
package session

import (
	"errors"
	"slices"
	"time"

	"tripmate/internal/modules/preference"
	"tripmate/internal/modules/prompt"
)

var (
	ErrNotFound       = errors.New("conversation not found")
	ErrEmptyUtterance = errors.New("empty utterance")
	// ErrConflict is returned by Store.Put when the stored version moved on
	// since the session was loaded.
	ErrConflict = errors.New("conversation modified concurrently")
)

// FallbackReply is recorded as the assistant turn when the generation
// backend fails or returns nothing.
const FallbackReply = "I'm here to help you plan your trip! Could you tell me more about your travel plans?"

type Turn struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	At        time.Time `json:"at"`
}

// Session is one conversation. It is not safe for concurrent use; the
// Service serialises access per conversation id.
type Session struct {
	ID string `json:"id"`
	// Owner is the UID of the caller that started the conversation; empty
	// when it was started without authentication.
	Owner       string           `json:"owner,omitempty"`
	History     []Turn           `json:"history"`
	Preferences preference.State `json:"preferences"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	// Version counts successful writes; stores reject a Put whose Version
	// does not match what they hold.
	Version int64 `json:"version"`
}

func New(id string, now time.Time) *Session {
	return &Session{
		ID:          id,
		Preferences: preference.NewState(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AccessibleBy reports whether caller may see the conversation. Anonymous
// callers and unowned conversations are not checked.
func (s *Session) AccessibleBy(caller string) bool {
	return caller == "" || s.Owner == "" || s.Owner == caller
}

// Intake records one turn: preferences are merged from the utterance and the
// (utterance, reply) pair is appended to history. It never fails.
func (s *Session) Intake(utterance, reply string, now time.Time) preference.Extraction {
	e := preference.Extract(utterance)
	s.Preferences.Merge(e)
	s.History = append(s.History, Turn{User: utterance, Assistant: reply, At: now})
	s.UpdatedAt = now
	return e
}

// Snapshot returns a copy of the preference state for read-only use.
func (s *Session) Snapshot() preference.State {
	return s.Preferences.Clone()
}

// Clear empties history and resets preferences to defaults together.
func (s *Session) Clear(now time.Time) {
	s.History = nil
	s.Preferences = preference.NewState()
	s.UpdatedAt = now
}

// Exchanges converts history into prompt context.
func (s *Session) Exchanges() []prompt.Exchange {
	out := make([]prompt.Exchange, len(s.History))
	for i, t := range s.History {
		out[i] = prompt.Exchange{User: t.User, Assistant: t.Assistant}
	}
	return out
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.History = slices.Clone(s.History)
	c.Preferences = s.Preferences.Clone()
	return &c
}
