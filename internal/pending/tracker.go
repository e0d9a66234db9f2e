// Package pending tracks the at-most-one open conversation turn per
// serialization key (C8). It is consulted read-only by the routing
// resolver and mutated by the event pipeline's handlers.
package pending

import (
	"sync"

	"github.com/dguik/discode/internal/routing"
)

// Turn is the mutable state of one open conversation turn.
type Turn struct {
	ChannelID      string
	MessageID      string
	StartMessageID string
}

// Tracker is grounded on the same map+mutex shape the teacher's streaming
// Manager uses for its per-instance readers: one map keyed by the
// serialization key, one RWMutex, no per-key locks (the pipeline already
// serializes per key at a higher level, per §5).
type Tracker struct {
	mu    sync.RWMutex
	turns map[string]*Turn
}

// NewTracker creates an empty pending-turn tracker.
func NewTracker() *Tracker {
	return &Tracker{turns: make(map[string]*Turn)}
}

// OpenTurn opens a turn for key, silently replacing any turn already open
// on that key (§4.7: "a new open on an already-open key silently replaces
// it").
func (t *Tracker) OpenTurn(key, channelID, messageID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns[key] = &Turn{ChannelID: channelID, MessageID: messageID}
}

// GetPending returns the current turn for key, if any.
func (t *Tracker) GetPending(key string) (Turn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	turn, ok := t.turns[key]
	if !ok {
		return Turn{}, false
	}
	return *turn, true
}

// EnsureStartMessage lazily posts a placeholder start message via post and
// remembers its id, returning the (possibly newly created) start message
// id. If no turn is open for key, one is opened first so the start message
// has somewhere to attach.
func (t *Tracker) EnsureStartMessage(key, channelID string, post func() (string, error)) (string, error) {
	t.mu.Lock()
	turn, ok := t.turns[key]
	if !ok {
		turn = &Turn{ChannelID: channelID}
		t.turns[key] = turn
	}
	if turn.StartMessageID != "" {
		existing := turn.StartMessageID
		t.mu.Unlock()
		return existing, nil
	}
	t.mu.Unlock()

	id, err := post()
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if turn, ok := t.turns[key]; ok {
		turn.StartMessageID = id
	}
	return id, nil
}

// MarkCompleted clears the turn for key (session.idle / session.end).
func (t *Tracker) MarkCompleted(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.turns, key)
}

// MarkError clears the turn for key after an error; reason is accepted for
// callers that want to log it but is not retained (the turn itself carries
// no error state once cleared).
func (t *Tracker) MarkError(key string, reason string) {
	_ = reason
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.turns, key)
}

// HasPending reports whether key has an open turn, for gating optional UI.
func (t *Tracker) HasPending(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.turns[key]
	return ok
}

// Snapshot implements routing.PendingLookup so the resolver can read a
// turn's state without the routing package depending on Tracker directly.
func (t *Tracker) Snapshot(key string) (routing.PendingSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	turn, ok := t.turns[key]
	if !ok {
		return routing.PendingSnapshot{}, false
	}
	return routing.PendingSnapshot{
		Open:           true,
		ChannelID:      turn.ChannelID,
		MessageID:      turn.MessageID,
		StartMessageID: turn.StartMessageID,
	}, true
}
