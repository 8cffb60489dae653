package match

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/codeduel/go/internal/models"
)

// DefaultSessionDuration is the time budget of a match when none is configured.
const DefaultSessionDuration = 30 * time.Minute

// Content is the question a session is built around.
type Content struct {
	QuestionID string
	Title      string
	TotalTests int
}

// ParticipantState is one player's progress inside a session.
type ParticipantState struct {
	Participant
	TestsPassed int
	TotalTests  int
	Completed   bool
}

// Session is one timed head-to-head match between exactly two players.
type Session struct {
	id        string
	content   Content
	players   [2]ParticipantState
	createdAt time.Time
	duration  time.Duration

	active bool
	expiry clockwork.Timer
	mu     sync.Mutex
}

// NewSession builds an active session. It rejects content without test cases
// and pairs that share a player ID.
func NewSession(first, second Participant, content Content, createdAt time.Time, duration time.Duration) (*Session, error) {
	if content.TotalTests <= 0 {
		return nil, fmt.Errorf("%w: question %s", ErrInvalidContent, content.QuestionID)
	}
	if first.PlayerID == "" || second.PlayerID == "" {
		return nil, ErrMissingIdentity
	}
	if first.PlayerID == second.PlayerID {
		return nil, fmt.Errorf("%w: %s", ErrSameParticipant, first.PlayerID)
	}
	if duration <= 0 {
		duration = DefaultSessionDuration
	}

	return &Session{
		id:      uuid.New().String(),
		content: content,
		players: [2]ParticipantState{
			{Participant: first, TotalTests: content.TotalTests},
			{Participant: second, TotalTests: content.TotalTests},
		},
		createdAt: createdAt,
		duration:  duration,
		active:    true,
	}, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Content() Content { return s.content }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) Duration() time.Duration { return s.duration }

// Deadline is the instant the session expires if nothing ends it earlier.
func (s *Session) Deadline() time.Time { return s.createdAt.Add(s.duration) }

// IsActive reports whether the session has not been terminated yet.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Participants returns a snapshot of both players' states.
func (s *Session) Participants() [2]ParticipantState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players
}

// slot returns the index of playerID, or -1. Callers hold mu.
func (s *Session) slot(playerID string) int {
	for i := range s.players {
		if s.players[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

// HasPlayer reports whether playerID is one of the two participants.
func (s *Session) HasPlayer(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slot(playerID) >= 0
}

// Player returns the state of playerID.
func (s *Session) Player(playerID string) (ParticipantState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.slot(playerID)
	if i < 0 {
		return ParticipantState{}, false
	}
	return s.players[i], true
}

// Opponent returns the state of the player facing playerID.
func (s *Session) Opponent(playerID string) (ParticipantState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.slot(playerID)
	if i < 0 {
		return ParticipantState{}, false
	}
	return s.players[1-i], true
}

// RecordProgress overwrites the tests passed by playerID. The latest report wins,
// even when it is lower than a previous one. Values are clamped to [0, TotalTests].
// It returns false, changing nothing, when the session has ended or playerID
// is not a participant.
func (s *Session) RecordProgress(playerID string, testsPassed int) (ParticipantState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return ParticipantState{}, false
	}
	i := s.slot(playerID)
	if i < 0 {
		return ParticipantState{}, false
	}

	if testsPassed < 0 {
		testsPassed = 0
	}
	if testsPassed > s.content.TotalTests {
		testsPassed = s.content.TotalTests
	}
	s.players[i].TestsPassed = testsPassed
	s.players[i].Completed = testsPassed == s.content.TotalTests
	return s.players[i], true
}

// BothCompleted reports whether both players passed every test.
func (s *Session) BothCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[0].Completed && s.players[1].Completed
}

// Winner returns the player with the strictly higher completion ratio.
// Equal ratios, including the initial 0/0 state, are a draw.
func (s *Session) Winner() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decideWinner(s.players[0], s.players[1])
}

func decideWinner(a, b ParticipantState) (string, bool) {
	// a.passed/a.total compared with b.passed/b.total; totals are always > 0
	left := a.TestsPassed * b.TotalTests
	right := b.TestsPassed * a.TotalTests
	switch {
	case left > right:
		return a.PlayerID, true
	case right > left:
		return b.PlayerID, true
	default:
		return "", false
	}
}

// setExpiry attaches the deadline timer. A session that already ended stops it immediately.
func (s *Session) setExpiry(timer clockwork.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		timer.Stop()
		return
	}
	s.expiry = timer
}

// Terminate ends the session exactly once. The first call returns the terminal
// record; later calls return false.
func (s *Session) Terminate(reason models.EndReason, endedAt time.Time) (*models.MatchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil, false
	}
	s.active = false

	// A timer that already fired observes !active and does nothing
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}

	result := &models.MatchResult{
		MatchID:    s.id,
		QuestionID: s.content.QuestionID,
		Reason:     reason,
		StartedAt:  s.createdAt,
		EndedAt:    endedAt,
	}
	if winner, ok := decideWinner(s.players[0], s.players[1]); ok {
		result.WinnerID = &winner
	}
	for i, p := range s.players {
		result.Participants[i] = models.MatchParticipant{
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			TestsPassed: p.TestsPassed,
			TotalTests:  p.TotalTests,
			Completed:   p.Completed,
		}
	}
	return result, true
}
