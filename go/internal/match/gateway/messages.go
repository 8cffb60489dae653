package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mcdev12/codeduel/go/internal/match/events"
)

// ErrMalformedMessage is returned for inbound messages that fail validation.
var ErrMalformedMessage = errors.New("malformed message")

// InboundType is the type of a message sent by a client
type InboundType string

const (
	InboundJoinQueue    InboundType = "join_queue"
	InboundSubmitResult InboundType = "submit_result"
)

// InboundMessage is the envelope of every client message.
type InboundMessage struct {
	Type    InboundType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JoinQueuePayload asks to be paired with an opponent.
type JoinQueuePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// SubmitResultPayload reports a player's latest test run. TotalTests is advisory.
type SubmitResultPayload struct {
	MatchID     string `json:"match_id"`
	PlayerID    string `json:"player_id"`
	TestsPassed *int   `json:"tests_passed"`
	TotalTests  *int   `json:"total_tests,omitempty"`
}

// ParseInbound decodes and validates a client message. It returns either a
// JoinQueuePayload or a SubmitResultPayload.
func ParseInbound(data []byte) (interface{}, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedMessage)
	}
	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("%w: payload is required", ErrMalformedMessage)
	}

	switch msg.Type {
	case InboundJoinQueue:
		var payload JoinQueuePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("%w: invalid join_queue payload", ErrMalformedMessage)
		}
		payload.PlayerID = strings.TrimSpace(payload.PlayerID)
		if payload.PlayerID == "" {
			return nil, fmt.Errorf("%w: player_id is required", ErrMalformedMessage)
		}
		if strings.TrimSpace(payload.PlayerName) == "" {
			payload.PlayerName = payload.PlayerID
		}
		return payload, nil

	case InboundSubmitResult:
		var payload SubmitResultPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("%w: invalid submit_result payload", ErrMalformedMessage)
		}
		switch {
		case payload.MatchID == "":
			return nil, fmt.Errorf("%w: match_id is required", ErrMalformedMessage)
		case payload.PlayerID == "":
			return nil, fmt.Errorf("%w: player_id is required", ErrMalformedMessage)
		case payload.TestsPassed == nil:
			return nil, fmt.Errorf("%w: tests_passed is required", ErrMalformedMessage)
		case *payload.TestsPassed < 0:
			return nil, fmt.Errorf("%w: tests_passed must not be negative", ErrMalformedMessage)
		}
		return payload, nil

	case "":
		return nil, fmt.Errorf("%w: type is required", ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, msg.Type)
	}
}

// OutboundMessage is the envelope of every notification written to a client
type OutboundMessage struct {
	ID        string          `json:"id"`
	Type      events.Type     `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
