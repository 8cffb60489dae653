package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/mcdev12/codeduel/go/internal/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileRepo stores player profiles keyed by player ID.
type ProfileRepo struct {
	collection *mongo.Collection
}

// UpsertProfile creates the profile or refreshes its name and last-seen time
func (r *ProfileRepo) UpsertProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	update := bson.M{
		"$set": bson.M{
			"player_id":    profile.PlayerID,
			"display_name": profile.DisplayName,
			"last_seen_at": profile.LastSeenAt,
		},
		"$setOnInsert": bson.M{"created_at": profile.LastSeenAt},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.Profile
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": profile.PlayerID}, update, opts).Decode(&saved)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return &saved, nil
}

// GetProfile retrieves a profile by player ID
func (r *ProfileRepo) GetProfile(ctx context.Context, playerID string) (*models.Profile, error) {
	var p models.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": playerID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, users.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
