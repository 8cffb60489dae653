package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	questionsCollection = "questions"
	matchesCollection   = "matches"
	profilesCollection  = "profiles"
)

// Store holds the collections backing questions, match history and profiles.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB, pings it and ensures the indexes the store relies on.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := New(client, database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Info().Str("database", database).Msg("Connected to MongoDB")
	return s, nil
}

// New wraps an existing client.
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
	}
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Matches returns the match history repository.
func (s *Store) Matches() *MatchRepo {
	return &MatchRepo{collection: s.db.Collection(matchesCollection)}
}

// Questions returns the question pool repository.
func (s *Store) Questions() *QuestionRepo {
	return &QuestionRepo{collection: s.db.Collection(questionsCollection)}
}

// Profiles returns the player profile repository.
func (s *Store) Profiles() *ProfileRepo {
	return &ProfileRepo{collection: s.db.Collection(profilesCollection)}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(matchesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "player_ids", Value: 1}, {Key: "ended_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create match indexes: %w", err)
	}
	return nil
}
