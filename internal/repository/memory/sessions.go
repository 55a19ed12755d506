package memory

import (
	"context"
	"sync"
	"time"

	"github.com/eyewearvn/storefront/pkg/errors"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// SessionStore keeps session state in process memory. State is lost on restart.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[sessionID]
	if !ok || (s.ttl > 0 && !s.now().Before(e.expiresAt)) {
		return nil, &errors.ErrNotFound{Resource: "session", ID: sessionID}
	}
	return append([]byte(nil), e.data...), nil
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = entry{
		data:      append([]byte(nil), data...),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// PurgeExpired removes entries past their expiry and returns how many were dropped
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int64
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}
