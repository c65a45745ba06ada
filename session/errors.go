package session

import "fmt"

// SessionNotFoundError is returned when a session id is unknown or the
// session has already expired or been deleted.
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.ID)
}

// SessionLimitExceededError is returned when creating a session would exceed
// the configured ceiling.
type SessionLimitExceededError struct {
	Limit int
}

func (e *SessionLimitExceededError) Error() string {
	return fmt.Sprintf("session limit of %d reached", e.Limit)
}

// SessionBusyError is returned when a session already has a turn in flight.
// Turns are serialized per session; callers should retry after the current
// turn completes.
type SessionBusyError struct {
	ID string
}

func (e *SessionBusyError) Error() string {
	return fmt.Sprintf("session %s is busy with another request", e.ID)
}
