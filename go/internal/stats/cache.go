package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	fieldWins   = "wins"
	fieldLosses = "losses"
	fieldDraws  = "draws"
)

// incrementIfCached bumps a counter only for players whose record is already
// cached, so a partial record is never mistaken for a full one.
var incrementIfCached = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
  redis.call("EXPIRE", KEYS[1], ARGV[2])
  return 1
end
return 0
`)

// Cache keeps per-player win/loss/draw counters in Redis hashes.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new player stats cache
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

func key(playerID string) string {
	return fmt.Sprintf("player:%s:stats", playerID)
}

// RecordResult adds a finished match to both players' cached counters.
func (c *Cache) RecordResult(ctx context.Context, result *models.MatchResult) error {
	for _, p := range result.Participants {
		field := outcomeField(result.OutcomeFor(p.PlayerID))
		keys := []string{key(p.PlayerID)}
		if err := incrementIfCached.Run(ctx, c.client, keys, field, int(c.ttl.Seconds())).Err(); err != nil {
			return fmt.Errorf("increment %s for %s: %w", field, p.PlayerID, err)
		}
	}
	return nil
}

// Get returns the cached record of a player. A miss returns false.
func (c *Cache) Get(ctx context.Context, playerID string) (*models.PlayerStats, bool, error) {
	values, err := c.client.HGetAll(ctx, key(playerID)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(values) == 0 {
		return nil, false, nil
	}

	stats, err := parseStats(playerID, values)
	if err != nil {
		return nil, false, err
	}
	return stats, true, nil
}

// Set stores a full record for a player.
func (c *Cache) Set(ctx context.Context, stats *models.PlayerStats) error {
	k := key(stats.PlayerID)

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k,
			fieldWins, stats.Wins,
			fieldLosses, stats.Losses,
			fieldDraws, stats.Draws,
		)
		pipe.Expire(ctx, k, c.ttl)
		return nil
	})
	return err
}

func outcomeField(o models.Outcome) string {
	switch o {
	case models.OutcomeWin:
		return fieldWins
	case models.OutcomeLoss:
		return fieldLosses
	default:
		return fieldDraws
	}
}

func parseStats(playerID string, values map[string]string) (*models.PlayerStats, error) {
	stats := &models.PlayerStats{PlayerID: playerID}
	for field, dst := range map[string]*int64{
		fieldWins:   &stats.Wins,
		fieldLosses: &stats.Losses,
		fieldDraws:  &stats.Draws,
	} {
		raw, ok := values[field]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s for %s: %w", field, playerID, err)
		}
		*dst = n
	}
	stats.Played = stats.Wins + stats.Losses + stats.Draws
	return stats, nil
}
