package match

import (
	"sync"
	"time"
)

// Participant identifies one player and the connection that reaches them.
// PlayerID is stable; ConnectionID is only valid for the lifetime of a socket.
type Participant struct {
	PlayerID     string
	ConnectionID string
	DisplayName  string
}

// WaitingEntry is a player waiting to be paired.
type WaitingEntry struct {
	Participant
	EnqueuedAt time.Time
}

// WaitingQueue is the FIFO of players waiting for an opponent.
type WaitingQueue struct {
	entries []WaitingEntry
	mu      sync.Mutex
}

// NewWaitingQueue creates an empty waiting queue
func NewWaitingQueue() *WaitingQueue {
	return &WaitingQueue{}
}

// Enqueue appends an entry and returns its 1-based position.
func (q *WaitingQueue) Enqueue(entry WaitingEntry) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, entry)
	return len(q.entries)
}

// DequeuePair removes and returns the two oldest entries in arrival order.
// The queue is left untouched when fewer than two entries are waiting.
func (q *WaitingQueue) DequeuePair() (WaitingEntry, WaitingEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) < 2 {
		return WaitingEntry{}, WaitingEntry{}, false
	}

	first, second := q.entries[0], q.entries[1]
	q.entries[0], q.entries[1] = WaitingEntry{}, WaitingEntry{}
	q.entries = q.entries[2:]
	return first, second, true
}

// RequeueFront puts previously claimed entries back at the head, keeping their order.
func (q *WaitingQueue) RequeueFront(claimed ...WaitingEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := make([]WaitingEntry, 0, len(q.entries)+len(claimed))
	entries = append(entries, claimed...)
	q.entries = append(entries, q.entries...)
}

// RemoveByConnection drops the entry owned by connectionID, if any.
func (q *WaitingQueue) RemoveByConnection(connectionID string) (WaitingEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, entry := range q.entries {
		if entry.ConnectionID == connectionID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return entry, true
		}
	}
	return WaitingEntry{}, false
}

// Contains reports whether playerID is currently waiting.
func (q *WaitingQueue) Contains(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, entry := range q.entries {
		if entry.PlayerID == playerID {
			return true
		}
	}
	return false
}

// Len returns the number of waiting entries.
func (q *WaitingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Snapshot returns a copy of the waiting entries in queue order.
func (q *WaitingQueue) Snapshot() []WaitingEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]WaitingEntry, len(q.entries))
	copy(out, q.entries)
	return out
}
