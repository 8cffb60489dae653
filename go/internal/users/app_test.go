package users

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	profiles   map[string]models.Profile
	shouldFail bool
}

func (m *mockRepository) UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	if m.shouldFail {
		return nil, fmt.Errorf("mock failure")
	}
	if m.profiles == nil {
		m.profiles = make(map[string]models.Profile)
	}
	if existing, ok := m.profiles[p.PlayerID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = time.Now()
	}
	m.profiles[p.PlayerID] = p
	return &p, nil
}

func (m *mockRepository) GetProfile(ctx context.Context, playerID string) (*models.Profile, error) {
	p, ok := m.profiles[playerID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func TestUpsertProfile(t *testing.T) {
	repo := &mockRepository{}
	app := NewApp(repo)
	ctx := context.Background()

	require.NoError(t, app.UpsertProfile(ctx, models.Profile{PlayerID: " p1 ", DisplayName: "  "}))
	got, err := app.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.DisplayName, "blank names fall back to the player id")

	require.NoError(t, app.UpsertProfile(ctx, models.Profile{PlayerID: "p1", DisplayName: strings.Repeat("x", 100)}))
	got, err = app.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, got.DisplayName, maxDisplayNameLength)

	assert.Error(t, app.UpsertProfile(ctx, models.Profile{}))

	repo.shouldFail = true
	assert.Error(t, app.UpsertProfile(ctx, models.Profile{PlayerID: "p2"}))

	_, err = app.GetProfile(ctx, "p2")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
