package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ContentSource supplies the question a new session is built around.
type ContentSource interface {
	FetchRandomContent(ctx context.Context) (models.Question, error)
}

// Matchmaker pairs the two oldest waiting players and builds a session for them.
type Matchmaker struct {
	queue    *WaitingQueue
	content  ContentSource
	clock    Clock
	duration time.Duration
}

// NewMatchmaker creates a matchmaker over queue. A non-positive duration uses DefaultSessionDuration.
func NewMatchmaker(queue *WaitingQueue, content ContentSource, clock Clock, duration time.Duration) *Matchmaker {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	return &Matchmaker{
		queue:    queue,
		content:  content,
		clock:    clock,
		duration: duration,
	}
}

// TryFormMatch claims a pair and returns a new, unregistered session.
// It returns (nil, nil) when fewer than two players are waiting.
// If no session can be built the claimed pair goes back to the head of the queue
// in its original order and the error is returned.
func (m *Matchmaker) TryFormMatch(ctx context.Context) (*Session, error) {
	first, second, ok := m.queue.DequeuePair()
	if !ok {
		return nil, nil
	}

	question, err := m.content.FetchRandomContent(ctx)
	if err != nil {
		m.queue.RequeueFront(first, second)
		log.Error().
			Err(err).
			Str("player_id", first.PlayerID).
			Str("opponent_id", second.PlayerID).
			Msg("failed to fetch question, pair requeued")
		return nil, fmt.Errorf("%w: %w", ErrContentUnavailable, err)
	}

	content := Content{
		QuestionID: question.ID,
		Title:      question.Title,
		TotalTests: question.TotalTests(),
	}

	session, err := NewSession(first.Participant, second.Participant, content, m.clock.Now(), m.duration)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, ErrSameParticipant):
		// Two entries for one player: keep the older one waiting
		m.queue.RequeueFront(first)
		log.Warn().
			Str("player_id", first.PlayerID).
			Str("connection_id", second.ConnectionID).
			Msg("dropped duplicate waiting entry")
		return nil, err
	default:
		m.queue.RequeueFront(first, second)
		log.Error().
			Err(err).
			Str("question_id", question.ID).
			Msg("rejected question, pair requeued")
		return nil, err
	}
}
