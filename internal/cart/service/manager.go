package service

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	"github.com/nahomjim91/spice-marketplace/internal/config"
	"go.uber.org/zap"
)

const defaultMaxSessions = 10_000

type managedSession struct {
	id      string
	mu      sync.Mutex
	session *Session
	evicted bool

	// lastUsed is guarded by Manager.mu.
	lastUsed time.Time
}

// Manager keeps the open sessions of the HTTP adapter. The least recently used
// session is closed once the registry is full; its snapshot stays in the store
// and is reloaded on the next request.
type Manager struct {
	engine *Engine
	log    *zap.Logger
	max    int

	mu       sync.Mutex
	sessions map[string]*list.Element
	lru      *list.List
}

func NewManager(engine *Engine, cfg config.Config, log *zap.Logger) *Manager {
	max := cfg.Cart.MaxSessionsInMemory
	if max <= 0 {
		max = defaultMaxSessions
	}
	return &Manager{
		engine:   engine,
		log:      log.Named("cart.manager"),
		max:      max,
		sessions: map[string]*list.Element{},
		lru:      list.New(),
	}
}

// Do runs fn against the session with exclusive access. Operations on one
// session are serialized; different sessions proceed in parallel.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(*Session) error) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.ErrInvalidSession
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for {
		if done, err := m.run(ctx, m.acquire(sessionID), fn); done {
			return err
		}
	}
}

func (m *Manager) run(ctx context.Context, entry *managedSession, fn func(*Session) error) (bool, error) {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	// Lost a race with eviction; the registry already holds a fresh entry.
	if entry.evicted {
		return false, nil
	}
	if entry.session == nil || entry.session.isClosed() {
		entry.session = m.engine.Open(ctx, entry.id)
	}
	return true, fn(entry.session)
}

// Evict closes and forgets sessionID. The persisted snapshot is kept.
func (m *Manager) Evict(sessionID string) {
	m.mu.Lock()
	el, ok := m.sessions[sessionID]
	if ok {
		m.lru.Remove(el)
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if ok {
		closeEntry(el.Value.(*managedSession))
	}
}

// EvictIdle closes every session not used since cutoff and reports how many
// were closed.
func (m *Manager) EvictIdle(cutoff time.Time) int {
	m.mu.Lock()
	var idle []*managedSession
	for el := m.lru.Back(); el != nil; {
		entry := el.Value.(*managedSession)
		if !entry.lastUsed.Before(cutoff) {
			break
		}
		prev := el.Prev()
		m.lru.Remove(el)
		delete(m.sessions, entry.id)
		idle = append(idle, entry)
		el = prev
	}
	m.mu.Unlock()

	for _, entry := range idle {
		closeEntry(entry)
	}
	return len(idle)
}

// Len reports how many sessions are held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

func (m *Manager) acquire(sessionID string) *managedSession {
	m.mu.Lock()
	now := m.engine.clock.Now()
	if el, ok := m.sessions[sessionID]; ok {
		m.lru.MoveToFront(el)
		entry := el.Value.(*managedSession)
		entry.lastUsed = now
		m.mu.Unlock()
		return entry
	}

	entry := &managedSession{id: sessionID, lastUsed: now}
	m.sessions[sessionID] = m.lru.PushFront(entry)

	var evicted []*managedSession
	for m.lru.Len() > m.max {
		oldest := m.lru.Back()
		m.lru.Remove(oldest)
		victim := oldest.Value.(*managedSession)
		delete(m.sessions, victim.id)
		evicted = append(evicted, victim)
	}
	m.mu.Unlock()

	for _, victim := range evicted {
		m.log.Debug("evicting idle cart session", zap.String("session_id", victim.id))
		closeEntry(victim)
	}
	return entry
}

// closeEntry waits for any in-flight operation on the entry before closing it.
func closeEntry(entry *managedSession) {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.evicted = true
	if entry.session != nil {
		entry.session.Close()
	}
}
