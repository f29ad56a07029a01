package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a play session does not exist (or has ended).
	ErrSessionNotFound = errors.New("play session not found")
	// ErrEmptyRound is returned when a topic has no playable cards.
	ErrEmptyRound = errors.New("no cards available")
	// ErrCardNotCurrent indicates an answer for a card that is not being shown.
	ErrCardNotCurrent = errors.New("card is not the current card")
	// ErrRoundFinished indicates an answer after the last card.
	ErrRoundFinished = errors.New("round already finished")
	// ErrInvalidTally is returned for scoring inputs outside the scorer's contract.
	ErrInvalidTally = errors.New("invalid round tally")
	// ErrInvalidDeckRequest is returned when a deck request fails validation.
	ErrInvalidDeckRequest = errors.New("invalid deck request")
	// ErrContentUnavailable wraps failures of the row-fetching collaborator.
	ErrContentUnavailable = errors.New("deck content unavailable")
	// ErrSourceNotConfigured indicates that no content source was configured.
	ErrSourceNotConfigured = errors.New("content source not configured")
)
