package match

import "errors"

var (
	ErrInvalidContent     = errors.New("content has no test cases")
	ErrSameParticipant    = errors.New("a match needs two distinct players")
	ErrMissingIdentity    = errors.New("player id is required")
	ErrAlreadyQueued      = errors.New("player is already waiting for a match")
	ErrAlreadyInSession   = errors.New("player is already in an active match")
	ErrSessionExists      = errors.New("session already registered")
	ErrContentUnavailable = errors.New("no question available")
)
