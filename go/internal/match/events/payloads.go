package events

import (
	"encoding/json"
	"time"

	"github.com/mcdev12/codeduel/go/internal/models"
)

// Notification types delivered to connected players.
type Type string

const (
	TypeQueued           Type = "queued"
	TypeMatchFound       Type = "match_found"
	TypeOpponentProgress Type = "opponent_progress"
	TypeMatchEnded       Type = "match_ended"
	TypeError            Type = "error"
)

// Domain event types published on the event bus.
const (
	EventMatchStarted = "MatchStarted"
	EventMatchEnded   = "MatchEnded"
)

// Notification is a message addressed to a single connection.
type Notification struct {
	Type      Type        `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Payload   interface{} `json:"data"`
}

// Opponent identifies the other side of a match for one recipient.
type Opponent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuestionRef is the part of a question that players receive with the pairing.
type QuestionRef struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TotalTests int    `json:"total_tests"`
}

// QueuedPayload acknowledges a join request.
type QueuedPayload struct {
	PlayerID string `json:"player_id"`
	Position int    `json:"position"`
}

// MatchFoundPayload is sent to each player of a newly formed match
type MatchFoundPayload struct {
	SessionID   string      `json:"session_id"`
	Opponent    Opponent    `json:"opponent"`
	Question    QuestionRef `json:"question"`
	TotalTests  int         `json:"total_tests"`
	DurationSec int         `json:"duration_sec"`
	Deadline    time.Time   `json:"deadline"`
}

// OpponentProgressPayload is sent to the player who did not submit.
type OpponentProgressPayload struct {
	TestsPassed int `json:"tests_passed"`
	TotalTests  int `json:"total_tests"`
}

// MatchEndedPayload is broadcast to both players of a terminated match.
type MatchEndedPayload struct {
	SessionID    string                     `json:"session_id"`
	WinnerID     *string                    `json:"winner"`
	Draw         bool                       `json:"draw"`
	Reason       models.EndReason           `json:"reason"`
	Participants [2]models.MatchParticipant `json:"participants"`
}

// ErrorPayload reports an inbound event that could not be processed.
type ErrorPayload struct {
	Message string `json:"message"`
}

// MatchStartedPayload is the payload of a MatchStarted domain event
type MatchStartedPayload struct {
	SessionID  string    `json:"session_id"`
	QuestionID string    `json:"question_id"`
	PlayerIDs  [2]string `json:"player_ids"`
	StartedAt  time.Time `json:"started_at"`
	Deadline   time.Time `json:"deadline"`
}

// DomainEvent is the envelope published to the event bus.
type DomainEvent struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	SessionID string          `json:"sessionId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMatchEnded builds the match_ended payload from a terminal record.
func NewMatchEnded(result *models.MatchResult) MatchEndedPayload {
	return MatchEndedPayload{
		SessionID:    result.MatchID,
		WinnerID:     result.WinnerID,
		Draw:         result.IsDraw(),
		Reason:       result.Reason,
		Participants: result.Participants,
	}
}
