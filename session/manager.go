package session

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"

	"datapilot/agent"
	"datapilot/config"
	"datapilot/datastore"
	"datapilot/dbpool"
)

// ModelFactory builds the chat model for a new session. modelName is the
// resolved per-session model identifier. Injected so tests can plug a stub
// model without network configuration.
type ModelFactory func(ctx context.Context, modelName string) (model.ChatModel, error)

// Manager owns the session table: bounded creation, lookup, deletion and the
// background expiry sweep. Sessions are isolated from each other; the
// manager only tracks lifecycle.
type Manager struct {
	cfg      config.Config
	pool     *dbpool.DBManager
	newModel ModelFactory
	log      func(string)

	mu       sync.RWMutex
	sessions map[string]*Session

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// NewManager creates a session manager and starts its expiry sweep. newModel
// may be nil, in which case the configured LLM provider is used.
func NewManager(cfg config.Config, pool *dbpool.DBManager, newModel ModelFactory, log func(string)) *Manager {
	if log == nil {
		log = func(string) {}
	}
	if newModel == nil {
		newModel = func(ctx context.Context, modelName string) (model.ChatModel, error) {
			c := cfg
			c.ModelName = modelName
			return agent.NewChatModel(ctx, c)
		}
	}
	m := &Manager{
		cfg:       cfg,
		pool:      pool,
		newModel:  newModel,
		log:       log,
		sessions:  make(map[string]*Session),
		sweepStop: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Create opens a new session with its own data store and orchestrator.
// modelName picks the chat model for this session; empty falls back to the
// configured default. The session count is bounded; hitting the ceiling is
// an error, not an eviction.
func (m *Manager) Create(ctx context.Context, modelName, strategyName string) (*Session, error) {
	if modelName == "" {
		modelName = m.cfg.ModelName
	}
	m.mu.Lock()
	if len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, &SessionLimitExceededError{Limit: m.cfg.MaxSessions}
	}
	// reserve the slot before the slow construction below
	id := uuid.New().String()
	m.sessions[id] = nil
	m.mu.Unlock()

	release := func() {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
	}

	// per-query and per-tool lines are detailed logging; session
	// lifecycle events always log
	agentLog := m.log
	if !m.cfg.DetailedLog {
		agentLog = func(string) {}
	}

	store, err := datastore.New(m.pool, datastore.Options{
		MaxRows:      m.cfg.MaxRows,
		MaxColumns:   m.cfg.MaxColumns,
		MaxQueryRows: m.cfg.MaxQueryRows,
		Log:          agentLog,
	})
	if err != nil {
		release()
		return nil, err
	}

	cm, err := m.newModel(ctx, modelName)
	if err != nil {
		store.Close()
		release()
		return nil, err
	}

	orch, err := agent.NewOrchestrator(ctx, cm, strategyName, store, agent.Options{
		MaxToolDepth: m.cfg.MaxToolDepth,
		ModelRetries: m.cfg.ModelRetries,
		RetryBase:    m.cfg.RetryBase(),
		Log:          agentLog,
	})
	if err != nil {
		store.Close()
		release()
		return nil, err
	}

	now := time.Now()
	s := &Session{
		ID:         id,
		CreatedAt:  now,
		ModelName:  modelName,
		Strategy:   orch.StrategyName(),
		Store:      store,
		Orch:       orch,
		lastActive: now,
		log:        m.log,
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.log("[SESSION] created " + id + " strategy=" + s.Strategy)
	return s, nil
}

// Get returns a live session and refreshes its activity clock.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s := m.sessions[id]
	m.mu.RUnlock()
	if s == nil {
		return nil, &SessionNotFoundError{ID: id}
	}
	if s.expiredAt(time.Now(), m.cfg.SessionTTL()) {
		m.remove(id, s)
		return nil, &SessionNotFoundError{ID: id}
	}
	s.Touch()
	return s, nil
}

// Delete removes a session. If a turn is in flight the session disappears
// from lookup immediately but its resources are released only after the turn
// completes.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok || s == nil {
		return &SessionNotFoundError{ID: id}
	}
	s.doom()
	return nil
}

// Count returns the number of tracked sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown stops the sweep and destroys every session.
func (m *Manager) Shutdown() {
	close(m.sweepStop)
	<-m.sweepDone

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s != nil {
			sessions = append(sessions, s)
		}
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.doom()
	}
}

func (m *Manager) remove(id string, s *Session) {
	m.mu.Lock()
	if m.sessions[id] == s {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	s.doom()
}

// sweep periodically evicts sessions idle past the TTL. Busy sessions are
// never swept mid-turn; they age out once idle again.
func (m *Manager) sweep() {
	defer close(m.sweepDone)
	ticker := time.NewTicker(m.cfg.SweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-m.sweepStop:
			return
		case now := <-ticker.C:
			ttl := m.cfg.SessionTTL()
			m.mu.RLock()
			expired := make(map[string]*Session)
			for id, s := range m.sessions {
				if s != nil && s.expiredAt(now, ttl) {
					expired[id] = s
				}
			}
			m.mu.RUnlock()
			for id, s := range expired {
				m.log("[SESSION] " + id + " expired")
				m.remove(id, s)
			}
		}
	}
}
