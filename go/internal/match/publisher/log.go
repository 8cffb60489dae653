package publisher

import (
	"context"

	"github.com/mcdev12/codeduel/go/internal/match/events"
	"github.com/rs/zerolog"
)

// LogPublisher writes events to a logger instead of a broker. It is used
// when no NATS URL is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.logger.Info().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("session_id", event.SessionID).
		RawJSON("payload", event.Payload).
		Msg("publishing event")
	return nil
}
