package match

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string) WaitingEntry {
	return WaitingEntry{
		Participant: Participant{PlayerID: id, ConnectionID: "conn-" + id, DisplayName: "Player " + id},
		EnqueuedAt:  time.Now(),
	}
}

func TestWaitingQueue_DequeuePairFIFO(t *testing.T) {
	q := NewWaitingQueue()

	_, _, ok := q.DequeuePair()
	assert.False(t, ok)

	assert.Equal(t, 1, q.Enqueue(entry("p1")))
	_, _, ok = q.DequeuePair()
	assert.False(t, ok, "one waiting player cannot be paired")
	assert.Equal(t, 1, q.Len())

	q.Enqueue(entry("p2"))
	q.Enqueue(entry("p3"))

	first, second, ok := q.DequeuePair()
	require.True(t, ok)
	assert.Equal(t, "p1", first.PlayerID)
	assert.Equal(t, "p2", second.PlayerID)
	assert.Equal(t, 1, q.Len())
	assert.True(t, q.Contains("p3"))
}

func TestWaitingQueue_RequeueFrontKeepsOrder(t *testing.T) {
	q := NewWaitingQueue()
	q.Enqueue(entry("p1"))
	q.Enqueue(entry("p2"))
	q.Enqueue(entry("p3"))

	first, second, ok := q.DequeuePair()
	require.True(t, ok)
	q.RequeueFront(first, second)

	snapshot := q.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "p1", snapshot[0].PlayerID)
	assert.Equal(t, "p2", snapshot[1].PlayerID)
	assert.Equal(t, "p3", snapshot[2].PlayerID)
}

func TestWaitingQueue_RemoveByConnection(t *testing.T) {
	q := NewWaitingQueue()
	q.Enqueue(entry("p1"))
	q.Enqueue(entry("p2"))

	removed, ok := q.RemoveByConnection("conn-p1")
	require.True(t, ok)
	assert.Equal(t, "p1", removed.PlayerID)

	_, ok = q.RemoveByConnection("conn-unknown")
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())
	assert.False(t, q.Contains("p1"))
}

func TestWaitingQueue_ConcurrentPairingNeverDoubleClaims(t *testing.T) {
	const players = 400
	const workers = 16

	q := NewWaitingQueue()
	var (
		mu      sync.Mutex
		claimed = make(map[string]int)
		pairs   int
		wg      sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < players; i += workers {
				q.Enqueue(entry(fmt.Sprintf("p%d", i)))
				if first, second, ok := q.DequeuePair(); ok {
					mu.Lock()
					claimed[first.PlayerID]++
					claimed[second.PlayerID]++
					pairs++
					mu.Unlock()
				}
			}
		}(w)
	}
	wg.Wait()

	for {
		first, second, ok := q.DequeuePair()
		if !ok {
			break
		}
		claimed[first.PlayerID]++
		claimed[second.PlayerID]++
		pairs++
	}

	assert.Equal(t, 2*pairs, len(claimed))
	for id, n := range claimed {
		assert.Equal(t, 1, n, "player %s claimed more than once", id)
	}
	assert.Equal(t, players, 2*pairs+q.Len())
}
