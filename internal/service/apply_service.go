package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/metrics"
	"github.com/bcnelson/netguard/internal/proxy"
)

// RuleSource provides the persisted rule set. Load fails only when the
// store cannot be read.
type RuleSource interface {
	Load(ctx context.Context) (domain.RuleSet, error)
}

// DomainSource provides the excluded domains.
type DomainSource interface {
	Load(ctx context.Context) ([]string, error)
}

// RuleExpander expands a rule set.
type RuleExpander interface {
	Expand(ctx context.Context, rules domain.RuleSet) (domain.ExpandedRuleSet, error)
}

// ApplyService pushes expanded rules to the proxy settings sink.
type ApplyService struct {
	rules     RuleSource
	domains   DomainSource
	expander  RuleExpander
	sink      proxy.SettingsSink
	debounce  time.Duration
	autoApply bool
	logger    zerolog.Logger

	mu           sync.Mutex
	applyTimer   *time.Timer
	applyPending bool
	applyMu      sync.Mutex
}

// NewApplyService creates a new ApplyService.
func NewApplyService(rules RuleSource, domains DomainSource, expander RuleExpander, sink proxy.SettingsSink,
	debounce time.Duration, autoApply bool, logger zerolog.Logger) *ApplyService {
	return &ApplyService{
		rules:     rules,
		domains:   domains,
		expander:  expander,
		sink:      sink,
		debounce:  debounce,
		autoApply: autoApply,
		logger:    logger.With().Str("component", "apply").Logger(),
	}
}

// TriggerApply schedules a debounced apply. Multiple triggers within the
// debounce period result in a single apply.
func (s *ApplyService) TriggerApply() {
	if !s.autoApply {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applyTimer != nil {
		s.applyTimer.Stop()
	}

	s.applyPending = true
	s.applyTimer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		s.applyPending = false
		s.mu.Unlock()

		if _, err := s.doApply(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("auto-apply failed")
		}
	})
}

// Pending reports whether a debounced apply is scheduled.
func (s *ApplyService) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyPending
}

// Preview returns the expanded rules and excluded domains without pushing.
func (s *ApplyService) Preview(ctx context.Context) (*domain.ExpandedRulesResponse, error) {
	rules, domains, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	expanded, err := s.expander.Expand(ctx, rules)
	if err != nil {
		return nil, err
	}
	return &domain.ExpandedRulesResponse{
		Rules:           domain.ExpandedEntries(rules, expanded),
		ExcludedDomains: domains,
	}, nil
}

// ForceApply cancels any pending debounced apply and applies immediately.
func (s *ApplyService) ForceApply(ctx context.Context) (*domain.ApplyResponse, error) {
	s.Stop()
	return s.doApply(ctx)
}

// Stop cancels a pending debounced apply.
func (s *ApplyService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyTimer != nil {
		s.applyTimer.Stop()
	}
	s.applyPending = false
}

func (s *ApplyService) doApply(ctx context.Context) (*domain.ApplyResponse, error) {
	if s.sink == nil {
		return nil, domain.ErrApplyNoSink
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	// A failed read leaves the last pushed snapshot in place.
	rules, domains, err := s.load(ctx)
	if err != nil {
		metrics.AppliesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	expanded, err := s.expander.Expand(ctx, rules)
	if err != nil {
		metrics.AppliesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	snap := &proxy.Snapshot{
		ID:              uuid.New().String(),
		GeneratedAt:     time.Now().UTC(),
		AppRules:        domain.ExpandedEntries(rules, expanded),
		ExcludedDomains: domains,
	}

	etag, changed, err := s.sink.Push(ctx, snap)
	if err != nil {
		metrics.AppliesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	result := "unchanged"
	if changed {
		result = "applied"
	}
	metrics.AppliesTotal.WithLabelValues(result).Inc()

	resp := &domain.ApplyResponse{
		SnapshotID:  snap.ID,
		ETag:        etag,
		RuleCount:   len(snap.AppRules),
		DerivedRule: len(expanded) - len(rules),
		Changed:     changed,
		AppliedAt:   snap.GeneratedAt,
	}
	s.logger.Info().
		Str("snapshot_id", resp.SnapshotID).
		Int("rules", resp.RuleCount).
		Int("derived", resp.DerivedRule).
		Bool("changed", changed).
		Msg("rules applied")
	return resp, nil
}

func (s *ApplyService) load(ctx context.Context) (domain.RuleSet, []string, error) {
	rules, err := s.rules.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	domains, err := s.domains.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rules, domains, nil
}
