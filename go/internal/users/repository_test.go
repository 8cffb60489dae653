package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/mcdev12/codeduel/go/internal/users/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier mimics the profiles table upsert.
type fakeQuerier struct {
	rows map[string]db.Profile
	err  error
}

func (f *fakeQuerier) UpsertProfile(ctx context.Context, arg db.UpsertProfileParams) (db.Profile, error) {
	if f.err != nil {
		return db.Profile{}, f.err
	}
	if f.rows == nil {
		f.rows = make(map[string]db.Profile)
	}
	row, ok := f.rows[arg.PlayerID]
	if !ok {
		row = db.Profile{PlayerID: arg.PlayerID, CreatedAt: arg.LastSeenAt}
	}
	row.DisplayName = arg.DisplayName
	row.LastSeenAt = arg.LastSeenAt
	f.rows[arg.PlayerID] = row
	return row, nil
}

func (f *fakeQuerier) GetProfile(ctx context.Context, playerID string) (db.Profile, error) {
	if f.err != nil {
		return db.Profile{}, f.err
	}
	row, ok := f.rows[playerID]
	if !ok {
		return db.Profile{}, sql.ErrNoRows
	}
	return row, nil
}

func TestRepository_UpsertKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(&fakeQuerier{})
	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := repo.UpsertProfile(ctx, models.Profile{PlayerID: "p1", DisplayName: "Ada", LastSeenAt: first})
	require.NoError(t, err)

	later := first.Add(48 * time.Hour)
	p, err := repo.UpsertProfile(ctx, models.Profile{PlayerID: "p1", DisplayName: "Ada L.", LastSeenAt: later})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", p.DisplayName)
	assert.Equal(t, first, p.CreatedAt)
	assert.Equal(t, later, p.LastSeenAt)

	got, err := repo.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, *p, *got)
}

func TestRepository_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewRepository(&fakeQuerier{}).GetProfile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	broken := NewRepository(&fakeQuerier{err: errors.New("connection reset")})
	_, err = broken.GetProfile(ctx, "p1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProfileNotFound)

	_, err = broken.UpsertProfile(ctx, models.Profile{PlayerID: "p1"})
	assert.Error(t, err)
}
