package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/codeduel/go/internal/match/events"
	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ErrShuttingDown is returned to joins that arrive after Shutdown started.
var ErrShuttingDown = errors.New("matchmaking is shutting down")

// Persistence durably records finished matches.
type Persistence interface {
	SaveCompletedSession(ctx context.Context, result *models.MatchResult) error
}

// ProfileStore keeps the profile of every player who joins.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile models.Profile) error
}

// Notifier delivers a notification to one connection.
type Notifier interface {
	Send(connectionID string, n events.Notification)
}

// EventPublisher publishes match lifecycle events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// Config holds the match lifecycle settings.
type Config struct {
	SessionDuration    time.Duration
	EndOnBothCompleted bool
	PersistMaxRetries  int
	PersistRetryDelay  time.Duration
	PersistTimeout     time.Duration
}

// DefaultConfig returns the default lifecycle settings
func DefaultConfig() Config {
	return Config{
		SessionDuration:    DefaultSessionDuration,
		EndOnBothCompleted: true,
		PersistMaxRetries:  3,
		PersistRetryDelay:  time.Second,
		PersistTimeout:     10 * time.Second,
	}
}

// Dependencies are the collaborators of a Coordinator. Profiles and Publisher are optional.
type Dependencies struct {
	Content     ContentSource
	Persistence Persistence
	Profiles    ProfileStore
	Notifier    Notifier
	Publisher   EventPublisher
	Clock       Clock
}

// Coordinator routes joins, progress reports, disconnects and deadlines to the
// queue, the matchmaker and the live sessions, and runs termination side effects.
type Coordinator struct {
	queue      *WaitingQueue
	registry   *Registry
	matchmaker *Matchmaker

	persistence Persistence
	profiles    ProfileStore
	notifier    Notifier
	publisher   EventPublisher
	clock       Clock
	config      Config

	// connection ID -> player ID, set on an accepted join
	bindings map[string]string
	// serializes the duplicate check with enqueue
	joinMu sync.Mutex
	bindMu sync.Mutex

	inflight sync.WaitGroup
	// held shared by Join and exclusively by Shutdown while it sets closing
	lifecycleMu sync.RWMutex
	closing     bool
}

// NewCoordinator wires a coordinator with its own queue and registry.
func NewCoordinator(cfg Config, deps Dependencies) *Coordinator {
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = DefaultSessionDuration
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 10 * time.Second
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	queue := NewWaitingQueue()
	return &Coordinator{
		queue:       queue,
		registry:    NewRegistry(),
		matchmaker:  NewMatchmaker(queue, deps.Content, clock, cfg.SessionDuration),
		persistence: deps.Persistence,
		profiles:    deps.Profiles,
		notifier:    deps.Notifier,
		publisher:   deps.Publisher,
		clock:       clock,
		config:      cfg,
		bindings:    make(map[string]string),
	}
}

// ProgressUpdate is a self-reported test result for one player in one session.
type ProgressUpdate struct {
	SessionID   string
	PlayerID    string
	TestsPassed int
}

// terminationCause carries why a session ends and who left, if anyone.
type terminationCause struct {
	reason         models.EndReason
	disconnectedID string
}

// Join puts a player in the waiting queue and forms as many matches as possible.
// A player already waiting or already playing is rejected with an error notification.
func (c *Coordinator) Join(ctx context.Context, p Participant) error {
	if p.PlayerID == "" {
		c.sendError(p.ConnectionID, ErrMissingIdentity)
		return ErrMissingIdentity
	}

	c.lifecycleMu.RLock()
	defer c.lifecycleMu.RUnlock()
	if c.closing {
		c.sendError(p.ConnectionID, ErrShuttingDown)
		return ErrShuttingDown
	}

	position, err := c.enqueue(p)
	if err != nil {
		log.Info().
			Err(err).
			Str("player_id", p.PlayerID).
			Str("connection_id", p.ConnectionID).
			Msg("join rejected")
		c.sendError(p.ConnectionID, err)
		return err
	}

	log.Info().
		Str("player_id", p.PlayerID).
		Str("connection_id", p.ConnectionID).
		Int("position", position).
		Msg("player queued")
	c.notify(p.ConnectionID, events.Notification{
		Type:    events.TypeQueued,
		Payload: events.QueuedPayload{PlayerID: p.PlayerID, Position: position},
	})
	c.upsertProfile(p)

	for {
		session, err := c.matchmaker.TryFormMatch(ctx)
		if err != nil {
			c.sendError(p.ConnectionID, err)
			return err
		}
		if session == nil {
			return nil
		}
		c.start(session)
	}
}

// enqueue adds p to the queue unless the player, or the connection's current
// player, is already waiting or playing.
func (c *Coordinator) enqueue(p Participant) (int, error) {
	c.joinMu.Lock()
	defer c.joinMu.Unlock()

	if err := c.checkAvailable(p.PlayerID); err != nil {
		return 0, err
	}
	c.bindMu.Lock()
	previous, bound := c.bindings[p.ConnectionID]
	c.bindMu.Unlock()
	if bound && previous != p.PlayerID {
		if err := c.checkAvailable(previous); err != nil {
			return 0, err
		}
	}

	position := c.queue.Enqueue(WaitingEntry{Participant: p, EnqueuedAt: c.clock.Now()})
	c.bind(p.ConnectionID, p.PlayerID)
	return position, nil
}

func (c *Coordinator) checkAvailable(playerID string) error {
	if c.queue.Contains(playerID) {
		return ErrAlreadyQueued
	}
	if _, ok := c.registry.FindByPlayer(playerID); ok {
		return ErrAlreadyInSession
	}
	return nil
}

// start registers a freshly formed session, arms its deadline and tells both players.
func (c *Coordinator) start(s *Session) {
	if err := c.registry.Insert(s); err != nil {
		log.Error().Err(err).Str("session_id", s.ID()).Msg("failed to register session")
		return
	}
	c.armExpiry(s)

	content := s.Content()
	players := s.Participants()
	log.Info().
		Str("session_id", s.ID()).
		Str("question_id", content.QuestionID).
		Str("player_one", players[0].PlayerID).
		Str("player_two", players[1].PlayerID).
		Time("deadline", s.Deadline()).
		Msg("match started")

	for i, p := range players {
		opponent := players[1-i]
		c.notify(p.ConnectionID, events.Notification{
			Type:      events.TypeMatchFound,
			SessionID: s.ID(),
			Payload: events.MatchFoundPayload{
				SessionID: s.ID(),
				Opponent:  events.Opponent{ID: opponent.PlayerID, Name: opponent.DisplayName},
				Question: events.QuestionRef{
					ID:         content.QuestionID,
					Title:      content.Title,
					TotalTests: content.TotalTests,
				},
				TotalTests:  content.TotalTests,
				DurationSec: int(s.Duration().Seconds()),
				Deadline:    s.Deadline(),
			},
		})
	}

	c.publish(events.EventMatchStarted, s.ID(), events.MatchStartedPayload{
		SessionID:  s.ID(),
		QuestionID: content.QuestionID,
		PlayerIDs:  [2]string{players[0].PlayerID, players[1].PlayerID},
		StartedAt:  s.CreatedAt(),
		Deadline:   s.Deadline(),
	})

	// A player may have disconnected between being paired and the session being registered
	for _, p := range players {
		if !c.isBound(p.ConnectionID, p.PlayerID) {
			c.terminate(s, terminationCause{reason: models.EndReasonDisconnect, disconnectedID: p.PlayerID})
			return
		}
	}
}

// Progress records a player's latest test result and forwards it to the opponent.
// Reports for unknown or ended sessions, or for players outside the session, are dropped.
func (c *Coordinator) Progress(ctx context.Context, update ProgressUpdate) {
	s, ok := c.registry.Get(update.SessionID)
	if !ok {
		log.Debug().
			Str("session_id", update.SessionID).
			Str("player_id", update.PlayerID).
			Msg("progress for unknown session dropped")
		return
	}

	state, ok := s.RecordProgress(update.PlayerID, update.TestsPassed)
	if !ok {
		log.Debug().
			Str("session_id", update.SessionID).
			Str("player_id", update.PlayerID).
			Msg("progress dropped")
		return
	}

	log.Debug().
		Str("session_id", s.ID()).
		Str("player_id", update.PlayerID).
		Int("tests_passed", state.TestsPassed).
		Int("total_tests", state.TotalTests).
		Msg("progress recorded")

	if opponent, ok := s.Opponent(update.PlayerID); ok {
		c.notify(opponent.ConnectionID, events.Notification{
			Type:      events.TypeOpponentProgress,
			SessionID: s.ID(),
			Payload: events.OpponentProgressPayload{
				TestsPassed: state.TestsPassed,
				TotalTests:  state.TotalTests,
			},
		})
	}

	if c.config.EndOnBothCompleted && s.BothCompleted() {
		c.terminate(s, terminationCause{reason: models.EndReasonCompleted})
	}
}

// Disconnect cleans up after a closed connection: it leaves the queue, and a
// live session bound to this connection ends immediately.
func (c *Coordinator) Disconnect(connectionID string) {
	if entry, ok := c.queue.RemoveByConnection(connectionID); ok {
		log.Info().
			Str("player_id", entry.PlayerID).
			Str("connection_id", connectionID).
			Msg("removed disconnected player from queue")
	}

	playerID, ok := c.unbind(connectionID)
	if !ok {
		return
	}

	s, ok := c.registry.FindByPlayer(playerID)
	if !ok {
		return
	}
	state, ok := s.Player(playerID)
	if !ok || state.ConnectionID != connectionID {
		return
	}

	log.Info().
		Str("session_id", s.ID()).
		Str("player_id", playerID).
		Str("connection_id", connectionID).
		Msg("player disconnected mid-match")
	c.terminate(s, terminationCause{reason: models.EndReasonDisconnect, disconnectedID: playerID})
}

// terminate ends s and runs the side effects exactly once.
func (c *Coordinator) terminate(s *Session, cause terminationCause) {
	result, ok := s.Terminate(cause.reason, c.clock.Now())
	if !ok {
		return
	}
	result.DisconnectedID = cause.disconnectedID
	c.registry.Remove(s.ID())

	event := log.Info().
		Str("session_id", result.MatchID).
		Str("reason", string(result.Reason)).
		Bool("draw", result.IsDraw()).
		Dur("elapsed", result.Duration())
	if result.WinnerID != nil {
		event = event.Str("winner_id", *result.WinnerID)
	}
	event.Msg("match ended")

	payload := events.NewMatchEnded(result)
	for _, p := range s.Participants() {
		c.notify(p.ConnectionID, events.Notification{
			Type:      events.TypeMatchEnded,
			SessionID: result.MatchID,
			Payload:   payload,
		})
	}

	c.persist(result)
	c.publish(events.EventMatchEnded, result.MatchID, payload)
}

// persist saves result in the background, retrying with a linear backoff.
func (c *Coordinator) persist(result *models.MatchResult) {
	if c.persistence == nil {
		return
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.config.PersistTimeout)
		defer cancel()

		if err := c.saveWithRetry(ctx, result); err != nil {
			log.Error().
				Err(err).
				Str("session_id", result.MatchID).
				Msg("failed to persist completed match")
		}
	}()
}

func (c *Coordinator) saveWithRetry(ctx context.Context, result *models.MatchResult) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.PersistMaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.config.PersistRetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.clock.After(delay):
			}
		}

		err := c.persistence.SaveCompletedSession(ctx, result)
		if err == nil {
			return nil
		}
		lastErr = err

		log.Warn().
			Err(err).
			Str("session_id", result.MatchID).
			Int("attempt", attempt+1).
			Int("max_retries", c.config.PersistMaxRetries).
			Msg("persist attempt failed")
	}

	return fmt.Errorf("failed after %d retries: %w", c.config.PersistMaxRetries, lastErr)
}

func (c *Coordinator) upsertProfile(p Participant) {
	if c.profiles == nil {
		return
	}

	profile := models.Profile{
		PlayerID:    p.PlayerID,
		DisplayName: p.DisplayName,
		LastSeenAt:  c.clock.Now(),
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.config.PersistTimeout)
		defer cancel()

		if err := c.profiles.UpsertProfile(ctx, profile); err != nil {
			log.Error().Err(err).Str("player_id", profile.PlayerID).Msg("failed to upsert profile")
		}
	}()
}

func (c *Coordinator) publish(eventType, sessionID string, payload interface{}) {
	if c.publisher == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}
	event := events.DomainEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		SessionID: sessionID,
		Timestamp: c.clock.Now(),
		Payload:   data,
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.config.PersistTimeout)
		defer cancel()

		if err := c.publisher.Publish(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("event_type", eventType).
				Str("session_id", sessionID).
				Msg("failed to publish event")
		}
	}()
}

func (c *Coordinator) notify(connectionID string, n events.Notification) {
	if c.notifier == nil || connectionID == "" {
		return
	}
	c.notifier.Send(connectionID, n)
}

func (c *Coordinator) sendError(connectionID string, err error) {
	c.notify(connectionID, events.Notification{
		Type:    events.TypeError,
		Payload: events.ErrorPayload{Message: err.Error()},
	})
}

func (c *Coordinator) bind(connectionID, playerID string) {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	c.bindings[connectionID] = playerID
}

func (c *Coordinator) unbind(connectionID string) (string, bool) {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()

	playerID, ok := c.bindings[connectionID]
	delete(c.bindings, connectionID)
	return playerID, ok
}

func (c *Coordinator) isBound(connectionID, playerID string) bool {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	return c.bindings[connectionID] == playerID
}

// Shutdown ends every live session and waits for background writes to finish.
// Joins already in progress finish first, so no session starts after the sweep.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.lifecycleMu.Lock()
	c.closing = true
	c.lifecycleMu.Unlock()

	sessions := c.registry.List()
	for _, s := range sessions {
		c.terminate(s, terminationCause{reason: models.EndReasonShutdown})
	}
	log.Info().Int("sessions", len(sessions)).Msg("ended live matches for shutdown")

	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight writes: %w", ctx.Err())
	}
}

// Stats is a point-in-time view of matchmaking load.
type Stats struct {
	Waiting     int `json:"waiting"`
	LiveMatches int `json:"live_matches"`
}

func (c *Coordinator) Stats() Stats {
	return Stats{
		Waiting:     c.queue.Len(),
		LiveMatches: c.registry.Len(),
	}
}

// SessionView is a read-only snapshot of a live session.
type SessionView struct {
	SessionID    string            `json:"session_id"`
	QuestionID   string            `json:"question_id"`
	Title        string            `json:"title"`
	Participants []ParticipantView `json:"participants"`
	StartedAt    time.Time         `json:"started_at"`
	Deadline     time.Time         `json:"deadline"`
}

// ParticipantView omits the connection handle of a participant.
type ParticipantView struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	TestsPassed int    `json:"tests_passed"`
	TotalTests  int    `json:"total_tests"`
	Completed   bool   `json:"completed"`
}

// Snapshot returns the current state of a live session.
func (c *Coordinator) Snapshot(sessionID string) (SessionView, bool) {
	s, ok := c.registry.Get(sessionID)
	if !ok {
		return SessionView{}, false
	}

	content := s.Content()
	view := SessionView{
		SessionID:  s.ID(),
		QuestionID: content.QuestionID,
		Title:      content.Title,
		StartedAt:  s.CreatedAt(),
		Deadline:   s.Deadline(),
	}
	for _, p := range s.Participants() {
		view.Participants = append(view.Participants, ParticipantView{
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			TestsPassed: p.TestsPassed,
			TotalTests:  p.TotalTests,
			Completed:   p.Completed,
		})
	}
	return view, true
}
