package memory

import (
	"context"
	"sync"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/storage"
)

var _ storage.Storage = (*Store)(nil)

// Store is an in-memory implementation of the storage interface for testing.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes []string

	// failGet and failSet make Get and Set fail for the listed keys (tests only).
	failGet map[string]error
	failSet map[string]error
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		values:  make(map[string][]byte),
		failGet: make(map[string]error),
		failSet: make(map[string]error),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failGet[key]; err != nil {
		return nil, err
	}
	v, ok := s.values[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failSet[key]; err != nil {
		return err
	}
	s.values[key] = append([]byte(nil), value...)
	s.writes = append(s.writes, key)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Writes returns every key passed to a successful Set, in call order.
func (s *Store) Writes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.writes...)
}

// FailGet makes subsequent Get calls for key return err. A nil err clears it.
func (s *Store) FailGet(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failGet, key)
		return
	}
	s.failGet[key] = err
}

// FailSet makes subsequent Set calls for key return err. A nil err clears it.
func (s *Store) FailSet(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failSet, key)
		return
	}
	s.failSet[key] = err
}
