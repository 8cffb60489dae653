package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrMatchNotFound = errors.New("match not found")

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// MatchRepository defines what the app layer needs from the repository
type MatchRepository interface {
	SaveMatch(ctx context.Context, result *models.MatchResult) (bool, error)
	GetMatch(ctx context.Context, matchID string) (*models.MatchResult, error)
	ListPlayerMatches(ctx context.Context, playerID string, limit int) ([]*models.MatchResult, error)
	GetPlayerStats(ctx context.Context, playerID string) (*models.PlayerStats, error)
}

// StatsCache keeps per-player win/loss/draw counters in front of the repository.
type StatsCache interface {
	RecordResult(ctx context.Context, result *models.MatchResult) error
	Get(ctx context.Context, playerID string) (*models.PlayerStats, bool, error)
	Set(ctx context.Context, stats *models.PlayerStats) error
}

// App handles match history business logic
type App struct {
	repo  MatchRepository
	cache StatsCache
}

// NewApp creates a new history App. cache may be nil.
func NewApp(repo MatchRepository, cache StatsCache) *App {
	return &App{
		repo:  repo,
		cache: cache,
	}
}

// SaveCompletedSession stores a finished match and updates both players'
// counters. A match that is already stored leaves the counters alone.
func (a *App) SaveCompletedSession(ctx context.Context, result *models.MatchResult) error {
	if result == nil || result.MatchID == "" {
		return fmt.Errorf("validation failed: match id is required")
	}

	inserted, err := a.repo.SaveMatch(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}
	if !inserted {
		log.Debug().Str("session_id", result.MatchID).Msg("match already stored")
		return nil
	}

	if a.cache != nil {
		if err := a.cache.RecordResult(ctx, result); err != nil {
			// counters are rebuilt from the repository on the next miss
			log.Warn().Err(err).Str("session_id", result.MatchID).Msg("failed to update stats cache")
		}
	}

	log.Info().
		Str("session_id", result.MatchID).
		Str("reason", string(result.Reason)).
		Msg("saved completed match")
	return nil
}

// GetMatch retrieves a finished match by ID
func (a *App) GetMatch(ctx context.Context, matchID string) (*models.MatchResult, error) {
	m, err := a.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// ListPlayerMatches returns a player's latest matches, newest first
func (a *App) ListPlayerMatches(ctx context.Context, playerID string, limit int) ([]*models.MatchResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	matches, err := a.repo.ListPlayerMatches(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// GetPlayerStats returns a player's record, served from the cache when possible.
func (a *App) GetPlayerStats(ctx context.Context, playerID string) (*models.PlayerStats, error) {
	if a.cache != nil {
		stats, ok, err := a.cache.Get(ctx, playerID)
		if err != nil {
			log.Warn().Err(err).Str("player_id", playerID).Msg("stats cache read failed")
		} else if ok {
			return stats, nil
		}
	}

	stats, err := a.repo.GetPlayerStats(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, stats); err != nil {
			log.Warn().Err(err).Str("player_id", playerID).Msg("failed to fill stats cache")
		}
	}
	return stats, nil
}
