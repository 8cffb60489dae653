package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrProfileNotFound = errors.New("profile not found")

const maxDisplayNameLength = 64

// ProfilesRepository defines what the app layer needs from the repository
type ProfilesRepository interface {
	UpsertProfile(ctx context.Context, profile models.Profile) (*models.Profile, error)
	GetProfile(ctx context.Context, playerID string) (*models.Profile, error)
}

// App handles player profile business logic
type App struct {
	repo ProfilesRepository
}

// NewApp creates a new users App
func NewApp(repo ProfilesRepository) *App {
	return &App{
		repo: repo,
	}
}

// UpsertProfile records that a player showed up under a display name.
func (a *App) UpsertProfile(ctx context.Context, profile models.Profile) error {
	profile.PlayerID = strings.TrimSpace(profile.PlayerID)
	if profile.PlayerID == "" {
		return fmt.Errorf("validation failed: player id is required")
	}
	profile.DisplayName = normalizeDisplayName(profile.DisplayName, profile.PlayerID)

	saved, err := a.repo.UpsertProfile(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	log.Debug().
		Str("player_id", saved.PlayerID).
		Str("display_name", saved.DisplayName).
		Msg("upserted profile")
	return nil
}

// GetProfile retrieves a player profile
func (a *App) GetProfile(ctx context.Context, playerID string) (*models.Profile, error) {
	p, err := a.repo.GetProfile(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func normalizeDisplayName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLength {
		runes := []rune(name)
		name = string(runes[:maxDisplayNameLength])
	}
	return name
}
