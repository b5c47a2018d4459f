// Package rules persists the user-authored routing configuration: per-app
// routing rules and excluded domains.
package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/storage"
)

// Store reads and writes the persisted RuleSet.
//
// A missing or undecodable stored value reads as the empty rule set. Every
// successful Set notifies subscribers with the written rules.
type Store struct {
	storage storage.Storage
	logger  zerolog.Logger
	subs    subscribers[domain.RuleSet]
}

// NewStore creates a rule store over storage.
func NewStore(store storage.Storage, logger zerolog.Logger) *Store {
	return &Store{
		storage: store,
		logger:  logger.With().Str("component", "rules").Logger(),
	}
}

// Get returns the current rule set. It never fails: absence, corrupt data
// and read errors all yield an empty set so tunnel startup is never blocked.
func (s *Store) Get(ctx context.Context) domain.RuleSet {
	rules, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("using empty rule set")
		return domain.RuleSet{}
	}
	return rules
}

// Load is Get for callers that write back what they read. Absent or
// corrupt data still yields an empty set; a failed read is returned.
func (s *Store) Load(ctx context.Context) (domain.RuleSet, error) {
	raw, err := s.storage.Get(ctx, storage.KeyAppRoutingRules)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.RuleSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading routing rules: %w", err)
	}

	rules, err := decodeRules(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("stored routing rules are corrupt, using empty set")
		return domain.RuleSet{}, nil
	}
	return rules, nil
}

// Set replaces the persisted rule set and notifies subscribers.
func (s *Store) Set(ctx context.Context, rules domain.RuleSet) error {
	if rules == nil {
		rules = domain.RuleSet{}
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encoding routing rules: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyAppRoutingRules, raw); err != nil {
		return err
	}

	s.logger.Debug().Int("rules", len(rules)).Msg("routing rules updated")
	s.subs.notify(rules.Clone())
	return nil
}

// Subscribe registers fn to be called after every successful Set. Callbacks
// run synchronously on the writer's goroutine and must not block. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(domain.RuleSet)) (unsubscribe func()) {
	return s.subs.add(fn)
}

func decodeRules(raw []byte) (domain.RuleSet, error) {
	var rules domain.RuleSet
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, err
	}
	if rules == nil {
		rules = domain.RuleSet{}
	}
	return rules, nil
}

type subscribers[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(T)
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}
	id := s.nextID
	s.nextID++
	s.fns[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers[T]) notify(v T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
