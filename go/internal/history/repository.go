package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/codeduel/go/internal/history/db"
	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/mcdev12/codeduel/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	InsertMatch(ctx context.Context, arg db.InsertMatchParams) (int64, error)
	InsertMatchParticipant(ctx context.Context, arg db.InsertMatchParticipantParams) error
	GetMatch(ctx context.Context, matchID string) (db.Match, error)
	ListMatchesByPlayer(ctx context.Context, arg db.ListMatchesByPlayerParams) ([]db.Match, error)
	GetPlayerRecord(ctx context.Context, playerID string) (db.GetPlayerRecordRow, error)
}

// Repository stores finished matches in Postgres
type Repository struct {
	db      *sql.DB
	queries Querier
}

// NewRepository creates a new match history repository. When database is
// non-nil, a match and its participant rows are written in one transaction.
func NewRepository(database *sql.DB, querier Querier) *Repository {
	return &Repository{
		db:      database,
		queries: querier,
	}
}

// SaveMatch inserts a finished match and reports whether it was new. Saving
// the same match twice is a no-op.
func (r *Repository) SaveMatch(ctx context.Context, result *models.MatchResult) (bool, error) {
	if r.db == nil {
		return r.saveMatch(ctx, r.queries, result)
	}

	var inserted bool
	newQueries := func(tx *sql.Tx) *db.Queries { return db.New(tx) }
	err := sqlutil.Run(ctx, r.db, newQueries, func(q *db.Queries) error {
		var err error
		inserted, err = r.saveMatch(ctx, q, result)
		return err
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (r *Repository) saveMatch(ctx context.Context, q Querier, result *models.MatchResult) (bool, error) {
	participants, err := json.Marshal(result.Participants)
	if err != nil {
		return false, fmt.Errorf("failed to marshal participants: %w", err)
	}

	var disconnected *string
	if result.DisconnectedID != "" {
		disconnected = &result.DisconnectedID
	}

	rows, err := q.InsertMatch(ctx, db.InsertMatchParams{
		MatchID:        result.MatchID,
		QuestionID:     result.QuestionID,
		PlayerOneID:    result.Participants[0].PlayerID,
		PlayerTwoID:    result.Participants[1].PlayerID,
		WinnerID:       sqlutil.ToSqlString(result.WinnerID),
		Reason:         string(result.Reason),
		DisconnectedID: sqlutil.ToSqlString(disconnected),
		Participants:   pqtype.NullRawMessage{RawMessage: participants, Valid: true},
		StartedAt:      result.StartedAt,
		EndedAt:        result.EndedAt,
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert match: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	for _, p := range result.Participants {
		err := q.InsertMatchParticipant(ctx, db.InsertMatchParticipantParams{
			MatchID:     result.MatchID,
			PlayerID:    p.PlayerID,
			TestsPassed: int32(p.TestsPassed),
			TotalTests:  int32(p.TotalTests),
			Completed:   p.Completed,
			Outcome:     string(result.OutcomeFor(p.PlayerID)),
		})
		if err != nil {
			return false, fmt.Errorf("failed to insert participant %s: %w", p.PlayerID, err)
		}
	}
	return true, nil
}

// GetMatch retrieves a finished match by ID
func (r *Repository) GetMatch(ctx context.Context, matchID string) (*models.MatchResult, error) {
	m, err := r.queries.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return r.dbMatchToModel(m)
}

// ListPlayerMatches returns the most recent matches of a player
func (r *Repository) ListPlayerMatches(ctx context.Context, playerID string, limit int) ([]*models.MatchResult, error) {
	rows, err := r.queries.ListMatchesByPlayer(ctx, db.ListMatchesByPlayerParams{
		PlayerID: playerID,
		Limit:    int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	results := make([]*models.MatchResult, 0, len(rows))
	for _, row := range rows {
		m, err := r.dbMatchToModel(row)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, nil
}

// GetPlayerStats aggregates a player's record from stored matches
func (r *Repository) GetPlayerStats(ctx context.Context, playerID string) (*models.PlayerStats, error) {
	row, err := r.queries.GetPlayerRecord(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player record: %w", err)
	}
	return &models.PlayerStats{
		PlayerID: playerID,
		Wins:     row.Wins,
		Losses:   row.Losses,
		Draws:    row.Draws,
		Played:   row.Wins + row.Losses + row.Draws,
	}, nil
}

// dbMatchToModel converts a database match to domain model
func (r *Repository) dbMatchToModel(m db.Match) (*models.MatchResult, error) {
	result := &models.MatchResult{
		MatchID:        m.MatchID,
		QuestionID:     m.QuestionID,
		WinnerID:       sqlutil.FromSqlStringPtr(m.WinnerID),
		Reason:         models.EndReason(m.Reason),
		DisconnectedID: sqlutil.FromSqlString(m.DisconnectedID, ""),
		StartedAt:      m.StartedAt,
		EndedAt:        m.EndedAt,
	}
	if m.Participants.Valid {
		if err := json.Unmarshal(m.Participants.RawMessage, &result.Participants); err != nil {
			return nil, fmt.Errorf("failed to decode participants of %s: %w", m.MatchID, err)
		}
	}
	return result, nil
}
