package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/codeduel/go/internal/history"
	"github.com/mcdev12/codeduel/go/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// matchDoc is the stored shape of a finished match. PlayerIDs is denormalized
// for the per-player queries.
type matchDoc struct {
	ID                 string   `bson:"_id"`
	PlayerIDs          []string `bson:"player_ids"`
	models.MatchResult `bson:",inline"`
}

func newMatchDoc(result *models.MatchResult) matchDoc {
	return matchDoc{
		ID: result.MatchID,
		PlayerIDs: []string{
			result.Participants[0].PlayerID,
			result.Participants[1].PlayerID,
		},
		MatchResult: *result,
	}
}

// MatchRepo stores finished matches in MongoDB.
type MatchRepo struct {
	collection *mongo.Collection
}

// SaveMatch inserts the match and reports whether it was new. Saving the same
// match twice is a no-op.
func (r *MatchRepo) SaveMatch(ctx context.Context, result *models.MatchResult) (bool, error) {
	_, err := r.collection.InsertOne(ctx, newMatchDoc(result))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert match: %w", err)
	}
	return true, nil
}

// GetMatch retrieves a finished match by ID
func (r *MatchRepo) GetMatch(ctx context.Context, matchID string) (*models.MatchResult, error) {
	var doc matchDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": matchID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, history.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &doc.MatchResult, nil
}

// ListPlayerMatches returns the most recent matches of a player
func (r *MatchRepo) ListPlayerMatches(ctx context.Context, playerID string, limit int) ([]*models.MatchResult, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "ended_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"player_ids": playerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []matchDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}

	results := make([]*models.MatchResult, 0, len(docs))
	for i := range docs {
		results = append(results, &docs[i].MatchResult)
	}
	return results, nil
}

// GetPlayerStats counts a player's wins, draws and games played.
func (r *MatchRepo) GetPlayerStats(ctx context.Context, playerID string) (*models.PlayerStats, error) {
	played, err := r.collection.CountDocuments(ctx, bson.M{"player_ids": playerID})
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	wins, err := r.collection.CountDocuments(ctx, bson.M{"winner_id": playerID})
	if err != nil {
		return nil, fmt.Errorf("failed to count wins: %w", err)
	}
	draws, err := r.collection.CountDocuments(ctx, bson.M{"player_ids": playerID, "winner_id": nil})
	if err != nil {
		return nil, fmt.Errorf("failed to count draws: %w", err)
	}

	return &models.PlayerStats{
		PlayerID: playerID,
		Wins:     wins,
		Draws:    draws,
		Losses:   played - wins - draws,
		Played:   played,
	}, nil
}
