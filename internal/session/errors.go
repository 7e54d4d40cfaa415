package session

import "errors"

// Sentinel errors for the session package.
var (
	ErrEmptyDeck  = errors.New("session: no cards to study")
	ErrNotRunning = errors.New("session: no session running")
)
