package history

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mcdev12/codeduel/go/internal/history/db"
	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier keeps inserted rows in memory the way the matches table would.
type fakeQuerier struct {
	rows         map[string]db.Match
	participants []db.InsertMatchParticipantParams
}

func (f *fakeQuerier) InsertMatchParticipant(ctx context.Context, arg db.InsertMatchParticipantParams) error {
	f.participants = append(f.participants, arg)
	return nil
}

func (f *fakeQuerier) InsertMatch(ctx context.Context, arg db.InsertMatchParams) (int64, error) {
	if f.rows == nil {
		f.rows = make(map[string]db.Match)
	}
	if _, exists := f.rows[arg.MatchID]; exists {
		return 0, nil
	}
	f.rows[arg.MatchID] = db.Match(arg)
	return 1, nil
}

func (f *fakeQuerier) GetMatch(ctx context.Context, matchID string) (db.Match, error) {
	m, ok := f.rows[matchID]
	if !ok {
		return db.Match{}, sql.ErrNoRows
	}
	return m, nil
}

func (f *fakeQuerier) ListMatchesByPlayer(ctx context.Context, arg db.ListMatchesByPlayerParams) ([]db.Match, error) {
	var out []db.Match
	for _, m := range f.rows {
		if m.PlayerOneID == arg.PlayerID || m.PlayerTwoID == arg.PlayerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeQuerier) GetPlayerRecord(ctx context.Context, playerID string) (db.GetPlayerRecordRow, error) {
	return db.GetPlayerRecordRow{Wins: 2, Losses: 1, Draws: 1}, nil
}

func TestRepository_SaveAndLoad(t *testing.T) {
	querier := &fakeQuerier{}
	repo := NewRepository(nil, querier)
	result := finished("m1")
	result.DisconnectedID = "p2"
	result.Reason = models.EndReasonDisconnect

	inserted, err := repo.SaveMatch(context.Background(), result)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.SaveMatch(context.Background(), result)
	require.NoError(t, err, "saving twice is idempotent")
	assert.False(t, inserted)

	require.Len(t, querier.participants, 2)
	assert.Equal(t, "win", querier.participants[0].Outcome)
	assert.Equal(t, "loss", querier.participants[1].Outcome)

	got, err := repo.GetMatch(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, "p1", *got.WinnerID)
	assert.Equal(t, "p2", got.DisconnectedID)
	assert.Equal(t, result.Participants, got.Participants)

	list, err := repo.ListPlayerMatches(context.Background(), "p2", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetMatch(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestRepository_DrawHasNoWinner(t *testing.T) {
	repo := NewRepository(nil, &fakeQuerier{})
	result := finished("m2")
	result.WinnerID = nil

	_, err := repo.SaveMatch(context.Background(), result)
	require.NoError(t, err)
	got, err := repo.GetMatch(context.Background(), "m2")
	require.NoError(t, err)
	assert.Nil(t, got.WinnerID)
	assert.True(t, got.IsDraw())
}

func TestRepository_GetPlayerStats(t *testing.T) {
	repo := NewRepository(nil, &fakeQuerier{})

	stats, err := repo.GetPlayerStats(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStats{PlayerID: "p1", Wins: 2, Losses: 1, Draws: 1, Played: 4}, *stats)
}
