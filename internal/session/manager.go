package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ctgpost/MarketingWebTools/internal/cache"
	"github.com/ctgpost/MarketingWebTools/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTTL is how long an untouched session stays alive.
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often idle sessions are expired.
	CleanupInterval = 30 * time.Second

	cacheTimeout = time.Second
)

type ManagerConfig struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

// Manager keeps the live sessions of this instance and mirrors their
// snapshots into the session cache.
type Manager struct {
	deps   Deps
	cache  cache.SessionCache
	cfg    ManagerConfig
	logger *zap.Logger
	sfg    singleflight.Group // collapses concurrent rehydration of one id

	mu       sync.RWMutex
	sessions map[string]*Session

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewManager starts the idle cleanup loop; call Close to stop it.
// A nil store keeps sessions in memory only.
func NewManager(deps Deps, store cache.SessionCache, cfg ManagerConfig) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = CleanupInterval
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	m := &Manager{
		deps:        deps,
		cache:       store,
		cfg:         cfg,
		logger:      deps.Logger,
		sessions:    make(map[string]*Session),
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

func (m *Manager) Create(ctx context.Context) *Session {
	s := m.register(uuid.NewString())
	s.notify()
	m.logger.Info("session created", zap.String("session_id", s.ID()))
	return s
}

// Get returns the live session with id, loading it from the session cache
// when another instance created it.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch()
		return s, nil
	}

	if m.cache == nil {
		return nil, ErrSessionNotFound
	}

	v, err, _ := m.sfg.Do(id, func() (interface{}, error) {
		m.mu.RLock()
		s, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			return s, nil
		}

		snap, err := m.cache.Get(ctx, id)
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		if err != nil {
			m.logger.Warn("cache get error", zap.String("session_id", id), zap.Error(err))
			return nil, ErrSessionNotFound
		}

		s = m.register(id)
		s.Restore(*snap)
		m.logger.Info("session rehydrated", zap.String("session_id", id), zap.Uint64("version", snap.Version))
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Session), nil
}

// Delete ends the session and drops its cached snapshot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.End()
	}

	if m.cache != nil {
		if err := m.cache.Delete(ctx, id); err != nil {
			m.logger.Warn("cache delete error", zap.String("session_id", id), zap.Error(err))
		}
	}

	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the cleanup loop and ends every live session.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stopCleanup) })
	m.wg.Wait()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.End()
	}
}

func (m *Manager) register(id string) *Session {
	s := New(id, m.deps)
	if m.cache != nil {
		s.Subscribe(m.writeThrough)
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) writeThrough(snap domain.SessionSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := m.cache.Set(ctx, snap.ID, &snap); err != nil {
		m.logger.Warn("cache set error", zap.String("session_id", snap.ID), zap.Error(err))
	}
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.expireIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

// expireIdle ends sessions untouched for longer than the idle TTL.
func (m *Manager) expireIdle() {
	cutoff := time.Now().Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.End()
		if m.cache != nil {
			ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
			if err := m.cache.Delete(ctx, s.ID()); err != nil {
				m.logger.Warn("cache delete error", zap.String("session_id", s.ID()), zap.Error(err))
			}
			cancel()
		}
		m.logger.Info("session expired", zap.String("session_id", s.ID()))
	}
}
