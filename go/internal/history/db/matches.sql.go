package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/sqlc-dev/pqtype"
)

type Match struct {
	MatchID        string                `json:"match_id"`
	QuestionID     string                `json:"question_id"`
	PlayerOneID    string                `json:"player_one_id"`
	PlayerTwoID    string                `json:"player_two_id"`
	WinnerID       sql.NullString        `json:"winner_id"`
	Reason         string                `json:"reason"`
	DisconnectedID sql.NullString        `json:"disconnected_id"`
	Participants   pqtype.NullRawMessage `json:"participants"`
	StartedAt      time.Time             `json:"started_at"`
	EndedAt        time.Time             `json:"ended_at"`
}

const insertMatch = `-- name: InsertMatch :execrows
INSERT INTO matches (
    match_id, question_id, player_one_id, player_two_id, winner_id,
    reason, disconnected_id, participants, started_at, ended_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (match_id) DO NOTHING
`

type InsertMatchParams struct {
	MatchID        string                `json:"match_id"`
	QuestionID     string                `json:"question_id"`
	PlayerOneID    string                `json:"player_one_id"`
	PlayerTwoID    string                `json:"player_two_id"`
	WinnerID       sql.NullString        `json:"winner_id"`
	Reason         string                `json:"reason"`
	DisconnectedID sql.NullString        `json:"disconnected_id"`
	Participants   pqtype.NullRawMessage `json:"participants"`
	StartedAt      time.Time             `json:"started_at"`
	EndedAt        time.Time             `json:"ended_at"`
}

func (q *Queries) InsertMatch(ctx context.Context, arg InsertMatchParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertMatch,
		arg.MatchID,
		arg.QuestionID,
		arg.PlayerOneID,
		arg.PlayerTwoID,
		arg.WinnerID,
		arg.Reason,
		arg.DisconnectedID,
		arg.Participants,
		arg.StartedAt,
		arg.EndedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getMatch = `-- name: GetMatch :one
SELECT match_id, question_id, player_one_id, player_two_id, winner_id,
       reason, disconnected_id, participants, started_at, ended_at
FROM matches
WHERE match_id = $1
`

func (q *Queries) GetMatch(ctx context.Context, matchID string) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatch, matchID)
	var i Match
	err := row.Scan(
		&i.MatchID,
		&i.QuestionID,
		&i.PlayerOneID,
		&i.PlayerTwoID,
		&i.WinnerID,
		&i.Reason,
		&i.DisconnectedID,
		&i.Participants,
		&i.StartedAt,
		&i.EndedAt,
	)
	return i, err
}

const listMatchesByPlayer = `-- name: ListMatchesByPlayer :many
SELECT match_id, question_id, player_one_id, player_two_id, winner_id,
       reason, disconnected_id, participants, started_at, ended_at
FROM matches
WHERE player_one_id = $1 OR player_two_id = $1
ORDER BY ended_at DESC
LIMIT $2
`

type ListMatchesByPlayerParams struct {
	PlayerID string `json:"player_id"`
	Limit    int32  `json:"limit"`
}

func (q *Queries) ListMatchesByPlayer(ctx context.Context, arg ListMatchesByPlayerParams) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listMatchesByPlayer, arg.PlayerID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Match
	for rows.Next() {
		var i Match
		if err := rows.Scan(
			&i.MatchID,
			&i.QuestionID,
			&i.PlayerOneID,
			&i.PlayerTwoID,
			&i.WinnerID,
			&i.Reason,
			&i.DisconnectedID,
			&i.Participants,
			&i.StartedAt,
			&i.EndedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertMatchParticipant = `-- name: InsertMatchParticipant :exec
INSERT INTO match_participants (match_id, player_id, tests_passed, total_tests, completed, outcome)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (match_id, player_id) DO NOTHING
`

type InsertMatchParticipantParams struct {
	MatchID     string `json:"match_id"`
	PlayerID    string `json:"player_id"`
	TestsPassed int32  `json:"tests_passed"`
	TotalTests  int32  `json:"total_tests"`
	Completed   bool   `json:"completed"`
	Outcome     string `json:"outcome"`
}

func (q *Queries) InsertMatchParticipant(ctx context.Context, arg InsertMatchParticipantParams) error {
	_, err := q.db.ExecContext(ctx, insertMatchParticipant,
		arg.MatchID,
		arg.PlayerID,
		arg.TestsPassed,
		arg.TotalTests,
		arg.Completed,
		arg.Outcome,
	)
	return err
}

const getPlayerRecord = `-- name: GetPlayerRecord :one
SELECT
    COUNT(*) FILTER (WHERE outcome = 'win')  AS wins,
    COUNT(*) FILTER (WHERE outcome = 'loss') AS losses,
    COUNT(*) FILTER (WHERE outcome = 'draw') AS draws
FROM match_participants
WHERE player_id = $1
`

type GetPlayerRecordRow struct {
	Wins   int64 `json:"wins"`
	Losses int64 `json:"losses"`
	Draws  int64 `json:"draws"`
}

func (q *Queries) GetPlayerRecord(ctx context.Context, playerID string) (GetPlayerRecordRow, error) {
	row := q.db.QueryRowContext(ctx, getPlayerRecord, playerID)
	var i GetPlayerRecordRow
	err := row.Scan(&i.Wins, &i.Losses, &i.Draws)
	return i, err
}
