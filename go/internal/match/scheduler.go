package match

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	AfterFunc(d time.Duration, f func()) clockwork.Timer
}

// armExpiry schedules the one-shot deadline for a registered session.
// The timer is handed to the session, which stops it when it terminates first.
func (c *Coordinator) armExpiry(s *Session) {
	id := s.ID()
	remaining := s.Deadline().Sub(c.clock.Now())
	if remaining < 0 {
		remaining = 0
	}

	timer := c.clock.AfterFunc(remaining, func() {
		log.Debug().Str("session_id", id).Msg("session deadline reached")
		c.expire(id)
	})
	s.setExpiry(timer)

	log.Debug().
		Str("session_id", id).
		Time("deadline", s.Deadline()).
		Dur("duration", remaining).
		Msg("scheduled session expiry")
}

// expire ends a session whose budget elapsed. A session that already ended is ignored.
func (c *Coordinator) expire(sessionID string) {
	s, ok := c.registry.Get(sessionID)
	if !ok {
		return
	}
	c.terminate(s, terminationCause{reason: models.EndReasonTimeout})
}
