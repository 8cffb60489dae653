package db

import (
	"context"
	"time"
)

type Profile struct {
	PlayerID    string    `json:"player_id"`
	DisplayName string    `json:"display_name"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	CreatedAt   time.Time `json:"created_at"`
}

const upsertProfile = `-- name: UpsertProfile :one
INSERT INTO profiles (player_id, display_name, last_seen_at)
VALUES ($1, $2, $3)
ON CONFLICT (player_id) DO UPDATE
SET display_name = EXCLUDED.display_name,
    last_seen_at = EXCLUDED.last_seen_at
RETURNING player_id, display_name, last_seen_at, created_at
`

type UpsertProfileParams struct {
	PlayerID    string    `json:"player_id"`
	DisplayName string    `json:"display_name"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) (Profile, error) {
	row := q.db.QueryRowContext(ctx, upsertProfile, arg.PlayerID, arg.DisplayName, arg.LastSeenAt)
	var i Profile
	err := row.Scan(
		&i.PlayerID,
		&i.DisplayName,
		&i.LastSeenAt,
		&i.CreatedAt,
	)
	return i, err
}

const getProfile = `-- name: GetProfile :one
SELECT player_id, display_name, last_seen_at, created_at
FROM profiles
WHERE player_id = $1
`

func (q *Queries) GetProfile(ctx context.Context, playerID string) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfile, playerID)
	var i Profile
	err := row.Scan(
		&i.PlayerID,
		&i.DisplayName,
		&i.LastSeenAt,
		&i.CreatedAt,
	)
	return i, err
}
