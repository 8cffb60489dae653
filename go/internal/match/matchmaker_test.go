package match

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchmaker_TryFormMatch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewWaitingQueue()
	content := &fakeContent{question: testQuestion("q1", 3)}
	m := NewMatchmaker(q, content, clock, 10*time.Minute)

	s, err := m.TryFormMatch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Zero(t, content.calls, "no content is fetched without a pair")

	q.Enqueue(entry("p1"))
	q.Enqueue(entry("p2"))

	s, err = m.TryFormMatch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 3, s.Content().TotalTests)
	assert.Equal(t, clock.Now(), s.CreatedAt())
	assert.Equal(t, clock.Now().Add(10*time.Minute), s.Deadline())

	players := s.Participants()
	assert.Equal(t, "p1", players[0].PlayerID)
	assert.Equal(t, "p2", players[1].PlayerID)
}

func TestMatchmaker_ContentFailureRequeuesPair(t *testing.T) {
	q := NewWaitingQueue()
	content := &fakeContent{shouldFail: true}
	m := NewMatchmaker(q, content, clockwork.NewFakeClock(), 0)

	q.Enqueue(entry("p1"))
	q.Enqueue(entry("p2"))
	q.Enqueue(entry("p3"))

	s, err := m.TryFormMatch(context.Background())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrContentUnavailable)
	assert.ErrorIs(t, err, errFakeFailure)

	snapshot := q.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{
		snapshot[0].PlayerID, snapshot[1].PlayerID, snapshot[2].PlayerID,
	})
}

func TestMatchmaker_ZeroTestQuestionRejected(t *testing.T) {
	q := NewWaitingQueue()
	m := NewMatchmaker(q, &fakeContent{question: testQuestion("empty", 0)}, clockwork.NewFakeClock(), 0)

	q.Enqueue(entry("p1"))
	q.Enqueue(entry("p2"))

	s, err := m.TryFormMatch(context.Background())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrInvalidContent)
	assert.Equal(t, 2, q.Len())
}

func TestMatchmaker_DuplicateEntryKeepsOlder(t *testing.T) {
	q := NewWaitingQueue()
	m := NewMatchmaker(q, &fakeContent{question: testQuestion("q1", 2)}, clockwork.NewFakeClock(), 0)

	older := entry("p1")
	newer := entry("p1")
	newer.ConnectionID = "conn-other"
	q.Enqueue(older)
	q.Enqueue(newer)

	_, err := m.TryFormMatch(context.Background())
	assert.ErrorIs(t, err, ErrSameParticipant)

	snapshot := q.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, older.ConnectionID, snapshot[0].ConnectionID)
}
