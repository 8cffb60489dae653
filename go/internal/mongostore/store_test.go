package mongostore

import (
	"testing"
	"time"

	"github.com/mcdev12/codeduel/go/internal/history"
	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/mcdev12/codeduel/go/internal/questions"
	"github.com/mcdev12/codeduel/go/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	_ history.MatchRepository       = (*MatchRepo)(nil)
	_ questions.QuestionsRepository = (*QuestionRepo)(nil)
	_ users.ProfilesRepository      = (*ProfileRepo)(nil)
)

func TestMatchDocLayout(t *testing.T) {
	winner := "p1"
	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	result := &models.MatchResult{
		MatchID:    "m1",
		QuestionID: "q1",
		WinnerID:   &winner,
		Reason:     models.EndReasonTimeout,
		Participants: [2]models.MatchParticipant{
			{PlayerID: "p1", TestsPassed: 3, TotalTests: 5},
			{PlayerID: "p2", TestsPassed: 1, TotalTests: 5},
		},
		StartedAt: started,
		EndedAt:   started.Add(30 * time.Minute),
	}

	raw, err := bson.Marshal(newMatchDoc(result))
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "m1", doc["_id"])
	assert.Equal(t, "m1", doc["match_id"])
	assert.Equal(t, "p1", doc["winner_id"])
	assert.Equal(t, bson.A{"p1", "p2"}, doc["player_ids"])
	assert.NotContains(t, doc, "MatchResult", "result fields are inlined")

	var decoded matchDoc
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, *result, decoded.MatchResult)
}

func TestMatchDocDrawStoresNullWinner(t *testing.T) {
	raw, err := bson.Marshal(newMatchDoc(&models.MatchResult{MatchID: "m2", Reason: models.EndReasonShutdown}))
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	v, ok := doc["winner_id"]
	assert.True(t, ok)
	assert.Nil(t, v)
}
