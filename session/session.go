package session

import (
	"context"
	"sync"
	"time"

	"datapilot/agent"
	"datapilot/datastore"
)

// Session binds one conversation to one dataset and one orchestrator. All
// state is session-scoped; destroying the session releases everything,
// including the SQL mirror behind the data store.
type Session struct {
	ID        string
	CreatedAt time.Time
	ModelName string
	Strategy  string

	Store *datastore.DataStore
	Orch  *agent.Orchestrator

	mu         sync.Mutex
	lastActive time.Time
	busy       bool
	doomed     bool
	destroyed  bool

	log func(string)
}

// Chat runs one turn. A session processes one turn at a time; a second
// caller gets SessionBusyError instead of queueing. If the session was
// deleted while the turn ran, teardown happens after the turn completes.
func (s *Session) Chat(ctx context.Context, utterance string) (*agent.Reply, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()
	return s.Orch.Chat(ctx, utterance)
}

// begin claims the session for one turn.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doomed || s.destroyed {
		return &SessionNotFoundError{ID: s.ID}
	}
	if s.busy {
		return &SessionBusyError{ID: s.ID}
	}
	s.busy = true
	s.lastActive = time.Now()
	return nil
}

// end releases the turn claim and performs any destruction deferred while
// the turn was in flight.
func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.lastActive = time.Now()
	doomed := s.doomed && !s.destroyed
	s.mu.Unlock()
	if doomed {
		s.destroy()
	}
}

// Touch refreshes the activity clock.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// Busy reports whether a turn is currently in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// expiredAt reports whether the session has been idle past ttl at the given
// instant.
func (s *Session) expiredAt(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.busy && now.Sub(s.lastActive) > ttl
}

// doom marks the session for destruction. When no turn is in flight the
// teardown runs immediately; otherwise it runs when the current turn ends.
func (s *Session) doom() {
	s.mu.Lock()
	if s.doomed {
		s.mu.Unlock()
		return
	}
	s.doomed = true
	immediate := !s.busy
	s.mu.Unlock()
	if immediate {
		s.destroy()
	} else {
		s.log("[SESSION] " + s.ID + " busy, destruction deferred until turn completes")
	}
}

// destroy releases the session's resources. Idempotent.
func (s *Session) destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.mu.Unlock()

	if err := s.Store.Close(); err != nil {
		s.log("[SESSION] " + s.ID + " store close failed: " + err.Error())
	}
	s.log("[SESSION] " + s.ID + " destroyed")
}
