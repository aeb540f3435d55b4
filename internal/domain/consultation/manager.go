package consultation

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSessionIdleTTL bounds how long an unused session is kept.
const DefaultSessionIdleTTL = 30 * time.Minute

// ManagerConfig tunes session retention.
type ManagerConfig struct {
	SessionIdleTTL time.Duration
}

type sessionKey struct {
	fieldID string
	userID  string
}

type managedSession struct {
	session  *Session
	lastUsed time.Time
}

// Manager hands out one Session per field and user so the mutation guard
// holds across requests. Sessions idle for longer than SessionIdleTTL are
// dropped on the next lookup unless a load or mutation is still running.
type Manager struct {
	store   Store
	metrics Metrics
	logger  *slog.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*managedSession
}

// NewManager constructs a Manager. metrics may be nil.
func NewManager(cfg ManagerConfig, store Store, metrics Metrics, logger *slog.Logger) *Manager {
	ttl := cfg.SessionIdleTTL
	if ttl <= 0 {
		ttl = DefaultSessionIdleTTL
	}
	return &Manager{
		store:    store,
		metrics:  metrics,
		logger:   logger,
		idleTTL:  ttl,
		now:      time.Now,
		sessions: make(map[sessionKey]*managedSession),
	}
}

// Session returns the session for fieldID and userID, creating it on first use.
func (m *Manager) Session(fieldID, userID string) *Session {
	key := sessionKey{fieldID: fieldID, userID: userID}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.evictIdleLocked(now)
	if entry, ok := m.sessions[key]; ok {
		entry.lastUsed = now
		return entry.session
	}
	s := NewSession(fieldID, userID, m.store, m.metrics, m.logger)
	m.sessions[key] = &managedSession{session: s, lastUsed: now}
	return s
}

// Len reports how many sessions are open.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) evictIdleLocked(now time.Time) {
	for key, entry := range m.sessions {
		if now.Sub(entry.lastUsed) <= m.idleTTL || entry.session.busy() {
			continue
		}
		delete(m.sessions, key)
		m.logger.Debug("idle consultation session evicted", "field_id", key.fieldID)
	}
}
