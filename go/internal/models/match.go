package models

import "time"

// EndReason defines why a match stopped.
type EndReason string

const (
	EndReasonTimeout    EndReason = "timeout"
	EndReasonDisconnect EndReason = "disconnect"
	EndReasonCompleted  EndReason = "completed"
	EndReasonShutdown   EndReason = "shutdown"
)

// MatchParticipant is the final state of one side of a match.
type MatchParticipant struct {
	PlayerID    string `json:"player_id" bson:"player_id"`
	DisplayName string `json:"display_name" bson:"display_name"`
	TestsPassed int    `json:"tests_passed" bson:"tests_passed"`
	TotalTests  int    `json:"total_tests" bson:"total_tests"`
	Completed   bool   `json:"completed" bson:"completed"`
}

// MatchResult is the terminal record of a match. WinnerID is nil on a draw.
type MatchResult struct {
	MatchID        string              `json:"match_id" bson:"match_id"`
	QuestionID     string              `json:"question_id" bson:"question_id"`
	WinnerID       *string             `json:"winner_id" bson:"winner_id"`
	Reason         EndReason           `json:"reason" bson:"reason"`
	DisconnectedID string              `json:"disconnected_id,omitempty" bson:"disconnected_id,omitempty"`
	Participants   [2]MatchParticipant `json:"participants" bson:"participants"`
	StartedAt      time.Time           `json:"started_at" bson:"started_at"`
	EndedAt        time.Time           `json:"ended_at" bson:"ended_at"`
}

// IsDraw reports whether the match ended without a winner.
func (r MatchResult) IsDraw() bool {
	return r.WinnerID == nil
}

// Duration returns how long the match ran.
func (r MatchResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// Outcome is how a match ended for one player.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// OutcomeFor returns the outcome of the match from playerID's point of view.
func (r MatchResult) OutcomeFor(playerID string) Outcome {
	switch {
	case r.WinnerID == nil:
		return OutcomeDraw
	case *r.WinnerID == playerID:
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}
