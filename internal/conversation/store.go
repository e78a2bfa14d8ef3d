// Package conversation keeps a bounded, ordered exchange history per user
// identity and renders it into the flat prompt format the inference model
// is grounded on.
package conversation

import (
	"strings"
	"sync"
)

// MaxHistorySize is the maximum number of exchanges retained per identity.
// Older exchanges are dropped so prompts stay within the model's token budget.
const MaxHistorySize = 10

type history struct {
	mu        sync.Mutex
	exchanges []Exchange
}

// Store holds per-identity conversation histories for the lifetime of the
// process. Each identity's history is an independently locked unit, so
// concurrent appends for the same identity serialize while operations on
// different identities never contend.
type Store struct {
	mu        sync.Mutex
	histories map[string]*history
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{histories: make(map[string]*history)}
}

// historyFor returns the identity's history, creating it on first access.
func (s *Store) historyFor(identity string) *history {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[identity]
	if !ok {
		h = &history{}
		s.histories[identity] = h
	}
	return h
}

// Get returns a copy of the identity's history, oldest first. The returned
// slice is safe to modify without affecting the store.
func (s *Store) Get(identity string) []Exchange {
	h := s.historyFor(identity)
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.exchanges) == 0 {
		return nil
	}
	out := make([]Exchange, len(h.exchanges))
	copy(out, h.exchanges)
	return out
}

// Append records one exchange and retains only the newest MaxHistorySize
// entries. The append and truncation happen under the identity's lock, so
// two concurrent appends can never overwrite each other's update.
func (s *Store) Append(identity string, speaker Speaker, content string) {
	h := s.historyFor(identity)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exchanges = append(h.exchanges, Exchange{Speaker: speaker, Content: content})
	if excess := len(h.exchanges) - MaxHistorySize; excess > 0 {
		h.exchanges = h.exchanges[excess:]
	}
}

// Clear resets the identity's history to empty. The identity stays in the
// keyspace; calling Clear for an unknown identity is a no-op beyond creating
// its empty history.
func (s *Store) Clear(identity string) {
	h := s.historyFor(identity)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exchanges = nil
}

// Render flattens a history into the prompt string sent to the inference
// model: one line per exchange, "{Speaker}: {content}", oldest first. The
// exact format is part of the contract with the model, not cosmetics.
func Render(exchanges []Exchange) string {
	var b strings.Builder
	for i, e := range exchanges {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(e.Speaker))
		b.WriteString(": ")
		b.WriteString(e.Content)
	}
	return b.String()
}
