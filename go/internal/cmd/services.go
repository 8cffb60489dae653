package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/codeduel/go/internal/history"
	historydb "github.com/mcdev12/codeduel/go/internal/history/db"
	"github.com/mcdev12/codeduel/go/internal/match"
	"github.com/mcdev12/codeduel/go/internal/match/gateway"
	"github.com/mcdev12/codeduel/go/internal/match/publisher"
	"github.com/mcdev12/codeduel/go/internal/memstore"
	"github.com/mcdev12/codeduel/go/internal/mongostore"
	"github.com/mcdev12/codeduel/go/internal/questions"
	questionsdb "github.com/mcdev12/codeduel/go/internal/questions/db"
	"github.com/mcdev12/codeduel/go/internal/stats"
	"github.com/mcdev12/codeduel/go/internal/users"
	usersdb "github.com/mcdev12/codeduel/go/internal/users/db"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Coordinator *match.Coordinator
	Gateway     *gateway.Service
	History     *history.App
	Questions   *questions.App
	Users       *users.App

	closers []func(context.Context) error
	checks  []healthCheck
}

type repositories struct {
	questions questions.QuestionsRepository
	matches   history.MatchRepository
	profiles  users.ProfilesRepository
}

func setupServices(ctx context.Context, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Storage → Repository layer → App layer → Coordinator → Gateway
	s := &Services{}

	repos, err := s.setupRepositories(ctx, config)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}

	var cache history.StatsCache
	if config.RedisAddr != "" {
		client, err := setupRedis(ctx, config.RedisAddr)
		if err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		s.addHealthCheck("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
		cache = stats.NewCache(client, config.StatsTTL)
	}

	var events match.EventPublisher
	if config.NATSURL != "" {
		jsConfig := publisher.DefaultJetStreamConfig()
		jsConfig.URL = config.NATSURL
		js, err := publisher.NewJetStreamPublisher(ctx, jsConfig)
		if err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return js.Close() })
		s.addHealthCheck("nats", js.Ping)
		events = js
	} else {
		events = publisher.NewLogPublisher(log.Logger)
	}

	s.Questions = questions.NewApp(repos.questions)
	if config.QuestionsFile != "" {
		if err := seedQuestions(ctx, s.Questions, config.QuestionsFile); err != nil {
			s.Close(ctx)
			return nil, err
		}
	}
	s.History = history.NewApp(repos.matches, cache)
	s.Users = users.NewApp(repos.profiles)
	s.Gateway = gateway.NewService(gateway.DefaultConfig())

	s.Coordinator = match.NewCoordinator(config.lifecycle(), match.Dependencies{
		Content:     s.Questions,
		Persistence: s.History,
		Profiles:    s.Users,
		Notifier:    s.Gateway,
		Publisher:   events,
		Clock:       clockwork.NewRealClock(),
	})
	s.Gateway.SetHandler(s.Coordinator)

	return s, nil
}

func (s *Services) setupRepositories(ctx context.Context, config *Config) (*repositories, error) {
	switch config.StoreBackend {
	case backendPostgres:
		database, err := setupDatabase(ctx)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return database.Close() })
		s.addHealthCheck("postgres", database.PingContext)

		return &repositories{
			questions: questions.NewRepository(questionsdb.New(database)),
			matches:   history.NewRepository(database, historydb.New(database)),
			profiles:  users.NewRepository(usersdb.New(database)),
		}, nil

	case backendMongo:
		store, err := mongostore.Connect(ctx, config.MongoURI, config.MongoDB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		s.addHealthCheck("mongo", store.Ping)

		return &repositories{
			questions: store.Questions(),
			matches:   store.Matches(),
			profiles:  store.Profiles(),
		}, nil

	case backendMemory:
		log.Warn().Msg("using in-memory store; matches and questions are lost on restart")
		store := memstore.New()
		return &repositories{
			questions: store,
			matches:   store,
			profiles:  store,
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", config.StoreBackend)
}

// seedQuestions loads a question file into an empty pool.
func seedQuestions(ctx context.Context, app *questions.App, path string) error {
	count, err := app.CountQuestions(ctx)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		log.Info().Int64("questions", count).Msg("question pool already seeded")
		return nil
	}

	qs, err := questions.LoadFile(path)
	if err != nil {
		return err
	}
	stored, err := app.Seed(ctx, qs)
	if err != nil {
		return fmt.Errorf("failed to seed questions: %w", err)
	}
	log.Info().Int("stored", stored).Int("total", len(qs)).Str("file", path).Msg("seeded question pool")
	return nil
}

// Close releases storage and broker connections in reverse order.
func (s *Services) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Error().Err(err).Msg("failed to close resource")
		}
	}
	s.closers = nil
}
