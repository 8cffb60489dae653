package models

import "time"

// Profile represents a player profile as stored by the persistence layer
type Profile struct {
	PlayerID    string    `json:"player_id" bson:"player_id"`
	DisplayName string    `json:"display_name" bson:"display_name"`
	LastSeenAt  time.Time `json:"last_seen_at" bson:"last_seen_at"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// PlayerStats holds aggregate results for a single player.
type PlayerStats struct {
	PlayerID string `json:"player_id"`
	Wins     int64  `json:"wins"`
	Losses   int64  `json:"losses"`
	Draws    int64  `json:"draws"`
	Played   int64  `json:"played"`
}
