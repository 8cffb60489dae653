// Package memstore keeps questions, match history and profiles in process
// memory. It backs local runs and tests that do not need a database.
package memstore

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/codeduel/go/internal/history"
	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/mcdev12/codeduel/go/internal/questions"
	"github.com/mcdev12/codeduel/go/internal/users"
)

// Store is a concurrency-safe in-memory repository set.
type Store struct {
	mu        sync.RWMutex
	questions []models.Question
	matches   map[string]models.MatchResult
	profiles  map[string]models.Profile
	rng       *rand.Rand
}

// New creates an empty store
func New() *Store {
	return &Store{
		matches:  make(map[string]models.MatchResult),
		profiles: make(map[string]models.Profile),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RandomQuestion picks uniformly among questions that have test cases.
func (s *Store) RandomQuestion(ctx context.Context) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]int, 0, len(s.questions))
	for i, q := range s.questions {
		if q.TotalTests() > 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, questions.ErrNoQuestions
	}

	q := s.questions[candidates[s.rng.Intn(len(candidates))]]
	return &q, nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.questions {
		if q.ID == id {
			return &q, nil
		}
	}
	return nil, questions.ErrQuestionNotFound
}

func (s *Store) CreateQuestion(ctx context.Context, question models.Question) (*models.Question, error) {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.questions = append(s.questions, question)
	s.mu.Unlock()
	return &question, nil
}

// ListQuestions pages through questions in insertion order.
func (s *Store) ListQuestions(ctx context.Context, limit, offset int) ([]*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= len(s.questions) {
		return []*models.Question{}, nil
	}
	end := len(s.questions)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]*models.Question, 0, end-offset)
	for _, q := range s.questions[offset:end] {
		q := q
		page = append(page, &q)
	}
	return page, nil
}

func (s *Store) CountQuestions(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, q := range s.questions {
		if q.TotalTests() > 0 {
			n++
		}
	}
	return n, nil
}

// SaveMatch stores the result once; later saves of the same match are ignored.
func (s *Store) SaveMatch(ctx context.Context, result *models.MatchResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[result.MatchID]; ok {
		return false, nil
	}
	s.matches[result.MatchID] = *result
	return true, nil
}

func (s *Store) GetMatch(ctx context.Context, matchID string) (*models.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok {
		return nil, history.ErrMatchNotFound
	}
	return &m, nil
}

func (s *Store) ListPlayerMatches(ctx context.Context, playerID string, limit int) ([]*models.MatchResult, error) {
	s.mu.RLock()
	var results []*models.MatchResult
	for _, m := range s.matches {
		if involves(m, playerID) {
			m := m
			results = append(results, &m)
		}
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].EndedAt.After(results[j].EndedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) GetPlayerStats(ctx context.Context, playerID string) (*models.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.PlayerStats{PlayerID: playerID}
	for _, m := range s.matches {
		if !involves(m, playerID) {
			continue
		}
		switch m.OutcomeFor(playerID) {
		case models.OutcomeWin:
			stats.Wins++
		case models.OutcomeLoss:
			stats.Losses++
		default:
			stats.Draws++
		}
		stats.Played++
	}
	return stats, nil
}

func (s *Store) UpsertProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.profiles[profile.PlayerID]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = profile.LastSeenAt
	}
	s.profiles[profile.PlayerID] = profile
	return &profile, nil
}

func (s *Store) GetProfile(ctx context.Context, playerID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[playerID]
	if !ok {
		return nil, users.ErrProfileNotFound
	}
	return &p, nil
}

func involves(m models.MatchResult, playerID string) bool {
	return m.Participants[0].PlayerID == playerID || m.Participants[1].PlayerID == playerID
}
