// Package memory keeps interview sessions in process memory.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

type entry struct {
	raw       []byte
	expiresAt time.Time
}

// Store implements domain.SessionStore with a mutex-guarded map. Values are
// stored serialized so callers never share slices with the store.
type Store struct {
	mu   sync.Mutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

// New returns a store whose entries expire ttl after their last save; ttl <= 0 never expires.
func New(ttl time.Duration) *Store {
	return &Store{data: map[string]entry{}, ttl: ttl, now: time.Now}
}

func (s *Store) Get(_ domain.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	e, ok := s.data[id]
	if ok && s.expired(e) {
		delete(s.data, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	var sess domain.Session
	if err := json.Unmarshal(e.raw, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("op=memory.Get: %w", err)
	}
	return sess, nil
}

func (s *Store) Save(_ domain.Context, sess domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("op=memory.Save: %w", err)
	}
	e := entry{raw: raw}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.data[sess.ID] = e
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ domain.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.data {
		if s.expired(e) {
			delete(s.data, id)
			n++
		}
	}
	return n
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
