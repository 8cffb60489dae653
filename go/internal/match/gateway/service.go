package gateway

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/mcdev12/codeduel/go/internal/match/events"
	"github.com/rs/zerolog/log"
)

// Service is the match gateway: it owns player connections, feeds their
// messages to the match handler and delivers notifications back.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
}

// Config holds configuration for the match gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
}

// DefaultConfig returns default configuration for the match gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// NewService creates a new match gateway service
func NewService(config Config) *Service {
	connectionManager := NewConnectionManager(config.ConnectionConfig)

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
	}
}

// SetHandler wires the match handler that receives inbound events.
func (s *Service) SetHandler(h MatchHandler) {
	s.connectionManager.SetHandler(h)
}

// Send implements match.Notifier.
func (s *Service) Send(connectionID string, n events.Notification) {
	s.connectionManager.Send(connectionID, n)
}

// Start delivers notifications until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting match gateway service")
	s.connectionManager.Start(ctx)
	log.Info().Msg("match gateway service stopped")
}

// RegisterRoutes registers the WebSocket HTTP routes
func (s *Service) RegisterRoutes(r *mux.Router) {
	s.wsHandler.RegisterRoutes(r)
	log.Info().Msg("match gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]interface{} {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "match_gateway"
	return stats
}
