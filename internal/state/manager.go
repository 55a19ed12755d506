package state

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/pkg/errors"
)

// maxRevalidateInterval bounds how long a cached store is trusted before
// the persister is asked again whether the session still exists.
const maxRevalidateInterval = 30 * time.Second

type cachedStore struct {
	store     *Store
	checkedAt time.Time
	lastSeen  time.Time
}

// Manager keeps one hydrated Store per live session id. Only sessions the
// persister knows are cached; a cached store is dropped once the persister
// has expired it or it sat idle longer than the session TTL.
type Manager struct {
	mu         sync.Mutex
	stores     map[string]*cachedStore
	persister  Persister
	sealer     *Sealer
	ttl        time.Duration
	revalidate time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewManager creates a manager. ttl should match the persister's session TTL;
// zero disables idle eviction.
func NewManager(persister Persister, sealer *Sealer, ttl time.Duration, logger *zap.Logger) *Manager {
	revalidate := ttl / 2
	if revalidate <= 0 || revalidate > maxRevalidateInterval {
		revalidate = maxRevalidateInterval
	}
	return &Manager{
		stores:     make(map[string]*cachedStore),
		persister:  persister,
		sealer:     sealer,
		ttl:        ttl,
		revalidate: revalidate,
		now:        time.Now,
		logger:     logger,
	}
}

// Create opens a session under a fresh id and flushes its initial state
func (m *Manager) Create(ctx context.Context) (*Store, error) {
	id := uuid.NewString()
	store, err := Open(ctx, id, m.persister, m.sealer, m.logger)
	if err != nil {
		return nil, err
	}
	if err := store.mutate(ctx, func(*Snapshot) {}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	now := m.now()
	m.stores[id] = &cachedStore{store: store, checkedAt: now, lastSeen: now}
	m.mu.Unlock()
	return store, nil
}

// Get returns the store for id. Ids unknown to the persister get a fresh,
// uncached store that is only cached once it has been persisted.
func (m *Manager) Get(ctx context.Context, id string) (*Store, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &errors.ErrValidation{
			Fields: map[string][]string{"session_id": {"invalid session id"}},
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if c, ok := m.stores[id]; ok {
		if now.Sub(c.checkedAt) < m.revalidate {
			c.lastSeen = now
			return c.store, nil
		}
		live, err := m.exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if live {
			c.checkedAt, c.lastSeen = now, now
			return c.store, nil
		}
		delete(m.stores, id)
		m.logger.Info("Session expired in storage, dropping cached state", zap.String("session_id", id))
	}

	store, err := Open(ctx, id, m.persister, m.sealer, m.logger)
	if err != nil {
		return nil, err
	}
	if store.hydrated {
		m.stores[id] = &cachedStore{store: store, checkedAt: now, lastSeen: now}
	}
	return store, nil
}

func (m *Manager) exists(ctx context.Context, id string) (bool, error) {
	if _, err := m.persister.Load(ctx, id); err != nil {
		var nf *errors.ErrNotFound
		if stderrors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Sweep drops cached stores idle for longer than the session TTL and
// returns how many were dropped. Persisted state is left to the persister.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	dropped := 0
	for id, c := range m.stores {
		if now.Sub(c.lastSeen) >= m.ttl {
			delete(m.stores, id)
			dropped++
		}
	}
	return dropped
}

// Cached returns the number of stores held in memory
func (m *Manager) Cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Forget drops the cached store and its persisted state
func (m *Manager) Forget(ctx context.Context, id string) error {
	m.mu.Lock()
	c, ok := m.stores[id]
	delete(m.stores, id)
	m.mu.Unlock()

	if ok {
		return c.store.Destroy(ctx)
	}
	return m.persister.Delete(ctx, id)
}
