package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a player has no game session.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrRoundActive is returned when a round is started while another is running.
	ErrRoundActive = errors.New("round already active")
	// ErrRoundNotActive is returned when a round operation needs a running round.
	ErrRoundNotActive = errors.New("round not active")
	// ErrProfileNotFound indicates no profile has been stored for the player yet.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrMissingPlayer indicates a request without a player id.
	ErrMissingPlayer = errors.New("missing player id")
)
