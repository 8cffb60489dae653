package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/mcdev12/codeduel/go/internal/users/db"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	UpsertProfile(ctx context.Context, arg db.UpsertProfileParams) (db.Profile, error)
	GetProfile(ctx context.Context, playerID string) (db.Profile, error)
}

// Repository implements profile data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new profiles repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// UpsertProfile creates the profile or refreshes its name and last-seen time
func (r *Repository) UpsertProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	p, err := r.queries.UpsertProfile(ctx, db.UpsertProfileParams{
		PlayerID:    profile.PlayerID,
		DisplayName: profile.DisplayName,
		LastSeenAt:  profile.LastSeenAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return r.dbProfileToModel(p), nil
}

// GetProfile retrieves a profile by player ID
func (r *Repository) GetProfile(ctx context.Context, playerID string) (*models.Profile, error) {
	p, err := r.queries.GetProfile(ctx, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return r.dbProfileToModel(p), nil
}

// dbProfileToModel converts a database profile to domain model
func (r *Repository) dbProfileToModel(p db.Profile) *models.Profile {
	return &models.Profile{
		PlayerID:    p.PlayerID,
		DisplayName: p.DisplayName,
		LastSeenAt:  p.LastSeenAt,
		CreatedAt:   p.CreatedAt,
	}
}
