// Package state holds the transient per-chat conversation state. Entries
// exist only while a multi-turn workflow is open; absence means idle.
// Nothing here is persisted.
package state

import (
	"strconv"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/kivanctezoren/sanalkiwobot/internal/models"
)

// Workflow states for the announcement flow. Any other stored value is
// corrupt and must be cleared by the dispatcher.
const (
	AnnounceLv1 = "announce_lv1"
	AnnounceLv2 = "announce_lv2"
)

// IsAnnounce reports whether a state value belongs to the announcement
// workflow.
func IsAnnounce(state string) bool {
	return state == AnnounceLv1 || state == AnnounceLv2
}

// Store owns the conversation states, pending announcement drafts and the
// last-broadcast record. Reads and transitions for one chat are expected to
// arrive serialized; the store itself is safe across chats.
type Store struct {
	states *cache.Cache
	drafts *cache.Cache

	mu        sync.Mutex
	lastAnncs models.BroadcastRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		states: cache.New(cache.NoExpiration, cache.NoExpiration),
		drafts: cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// State returns the chat's open workflow state, if any.
func (s *Store) State(chatID int64) (string, bool) {
	v, ok := s.states.Get(key(chatID))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// SetState opens or transitions the chat's workflow state.
func (s *Store) SetState(chatID int64, state string) {
	s.states.Set(key(chatID), state, cache.NoExpiration)
}

// ClearState closes the chat's workflow.
func (s *Store) ClearState(chatID int64) {
	s.states.Delete(key(chatID))
}

// Draft returns the chat's pending announcement text, if any.
func (s *Store) Draft(chatID int64) (string, bool) {
	v, ok := s.drafts.Get(key(chatID))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// SetDraft stores the chat's pending announcement text.
func (s *Store) SetDraft(chatID int64, text string) {
	s.drafts.Set(key(chatID), text, cache.NoExpiration)
}

// ClearDraft discards the chat's pending announcement text.
func (s *Store) ClearDraft(chatID int64) {
	s.drafts.Delete(key(chatID))
}

// SetLastBroadcast replaces the record of the most recent broadcast.
func (s *Store) SetLastBroadcast(record models.BroadcastRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAnncs = record
}

// LastBroadcast returns a copy of the most recent broadcast record.
func (s *Store) LastBroadcast() models.BroadcastRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := make(models.BroadcastRecord, len(s.lastAnncs))
	for chatID, msgID := range s.lastAnncs {
		r[chatID] = msgID
	}
	return r
}

// ClearLastBroadcast drops the broadcast record. Called unconditionally
// after a retraction attempt, regardless of partial failure.
func (s *Store) ClearLastBroadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAnncs = nil
}
