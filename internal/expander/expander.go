// Package expander derives routing rules for the helper apps, extensions
// and frameworks embedded inside the apps a rule set names.
package expander

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/metrics"
)

// AppLocator resolves an installed app's bundle location.
type AppLocator interface {
	// BundleLocation returns the bundle path (relative to the expander's
	// fs.FS) for id, or domain.ErrAppNotFound.
	BundleLocation(ctx context.Context, id domain.AppIdentifier) (string, error)
}

// Expander computes ExpandedRuleSets. It keeps no cache: every call
// re-resolves and re-scans each referenced bundle.
type Expander struct {
	fsys    fs.FS
	locator AppLocator
	logger  zerolog.Logger
}

// New creates an Expander reading bundles from fsys.
func New(fsys fs.FS, locator AppLocator, logger zerolog.Logger) *Expander {
	return &Expander{
		fsys:    fsys,
		locator: locator,
		logger:  logger.With().Str("component", "expander").Logger(),
	}
}

// Expand returns rules plus a derived entry for every bundle embedded in a
// ruled app. Explicit rules are never overwritten. When two parents embed
// the same child, parents are processed in identifier order and the first
// one wins. Apps that cannot be located contribute only their own entry.
//
// The only error is ctx's.
func (e *Expander) Expand(ctx context.Context, rules domain.RuleSet) (domain.ExpandedRuleSet, error) {
	expanded := make(domain.ExpandedRuleSet, len(rules))
	for id, rule := range rules {
		expanded[id] = rule
	}

	for _, id := range rules.Identifiers() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rule := rules[id]

		location, err := e.locator.BundleLocation(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, domain.ErrAppNotFound) {
				e.logger.Debug().Str("bundle_id", string(id)).Msg("app not installed, no derived rules")
			} else {
				e.logger.Warn().Err(err).Str("bundle_id", string(id)).Msg("locating app failed, no derived rules")
			}
			continue
		}

		start := time.Now()
		children, err := EmbeddedIdentifiers(ctx, e.fsys, location, id)
		metrics.BundleScanDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			e.logger.Warn().Err(err).Str("bundle_id", string(id)).Str("location", location).Msg("scanning bundle failed")
			continue
		}

		for _, child := range children {
			if _, explicit := rules[child]; explicit {
				continue
			}
			if _, taken := expanded[child]; taken {
				continue
			}
			expanded[child] = rule
		}
	}

	derived := len(expanded) - len(rules)
	metrics.ExpansionsTotal.Inc()
	metrics.DerivedRules.Set(float64(derived))
	e.logger.Debug().Int("rules", len(rules)).Int("derived", derived).Msg("rules expanded")

	return expanded, nil
}
