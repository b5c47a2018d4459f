package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/storage"
)

// DomainStore persists the domains whose traffic bypasses the tunnel.
// It has the same absence and corruption semantics as Store.
type DomainStore struct {
	storage storage.Storage
	logger  zerolog.Logger
	subs    subscribers[[]string]
}

// NewDomainStore creates an excluded-domain store over storage.
func NewDomainStore(store storage.Storage, logger zerolog.Logger) *DomainStore {
	return &DomainStore{
		storage: store,
		logger:  logger.With().Str("component", "excluded_domains").Logger(),
	}
}

// Get returns the excluded domains, sorted. Read errors yield an empty list.
func (s *DomainStore) Get(ctx context.Context) []string {
	domains, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("using empty excluded domain list")
		return []string{}
	}
	return domains
}

// Load is Get with read errors returned. Absent or corrupt data yields an
// empty list.
func (s *DomainStore) Load(ctx context.Context) ([]string, error) {
	raw, err := s.storage.Get(ctx, storage.KeyExcludedDomains)
	if errors.Is(err, domain.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading excluded domains: %w", err)
	}

	var domains []string
	if err := json.Unmarshal(raw, &domains); err != nil {
		s.logger.Warn().Err(err).Msg("stored excluded domains are corrupt, using empty list")
		return []string{}, nil
	}
	return NormalizeDomains(domains), nil
}

// Set replaces the excluded domains and notifies subscribers.
func (s *DomainStore) Set(ctx context.Context, domains []string) error {
	domains = NormalizeDomains(domains)
	raw, err := json.Marshal(domains)
	if err != nil {
		return fmt.Errorf("encoding excluded domains: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyExcludedDomains, raw); err != nil {
		return err
	}

	s.logger.Debug().Int("domains", len(domains)).Msg("excluded domains updated")
	s.subs.notify(append([]string(nil), domains...))
	return nil
}

// Subscribe registers fn to be called after every successful Set.
func (s *DomainStore) Subscribe(fn func([]string)) (unsubscribe func()) {
	return s.subs.add(fn)
}

// NormalizeDomains lowercases, trims dots and whitespace, drops empties,
// deduplicates and sorts.
func NormalizeDomains(domains []string) []string {
	seen := make(map[string]struct{}, len(domains))
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = normalizeHost(d)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func normalizeHost(h string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(h)), ".")
}
