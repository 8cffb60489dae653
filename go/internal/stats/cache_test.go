package stats

import (
	"testing"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeField(t *testing.T) {
	winner := "p1"
	result := models.MatchResult{WinnerID: &winner}

	assert.Equal(t, "wins", outcomeField(result.OutcomeFor("p1")))
	assert.Equal(t, "losses", outcomeField(result.OutcomeFor("p2")))

	result.WinnerID = nil
	assert.Equal(t, "draws", outcomeField(result.OutcomeFor("p1")))
}

func TestParseStats(t *testing.T) {
	stats, err := parseStats("p1", map[string]string{"wins": "4", "losses": "2"})
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStats{PlayerID: "p1", Wins: 4, Losses: 2, Played: 6}, *stats)

	_, err = parseStats("p1", map[string]string{"draws": "many"})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "player:abc:stats", key("abc"))
}
