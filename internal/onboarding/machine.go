// Package onboarding tracks the approvals required before the tunnel can
// be used: the system extension, then the VPN configuration.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/storage"
)

// Machine persists the onboarding status and applies approval events.
//
// Status only moves forward one step at a time. Events that do not apply
// to the current step are ignored, which makes duplicates idempotent.
type Machine struct {
	storage storage.Storage
	logger  zerolog.Logger
}

// New creates an onboarding Machine over store.
func New(store storage.Storage, logger zerolog.Logger) *Machine {
	return &Machine{
		storage: store,
		logger:  logger.With().Str("component", "onboarding").Logger(),
	}
}

// Status returns the persisted status. Absent or unrecognized values yield
// the initial status, and so does a failed read.
func (m *Machine) Status(ctx context.Context) domain.OnboardingStatus {
	status, err := m.load(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("reading onboarding status, assuming first run")
		return domain.DefaultOnboardingStatus()
	}
	return status
}

// load is Status without the read-error fallback. Only absence and
// unrecognized values map to the initial status.
func (m *Machine) load(ctx context.Context) (domain.OnboardingStatus, error) {
	raw, err := m.storage.Get(ctx, storage.KeyOnboardingStatus)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultOnboardingStatus(), nil
	}
	if err != nil {
		return domain.OnboardingStatus{}, fmt.Errorf("reading onboarding status: %w", err)
	}

	status, ok := domain.ParseOnboardingStatus(string(raw))
	if !ok {
		m.logger.Warn().Str("raw", string(raw)).Msg("unknown onboarding status, assuming first run")
	}
	return status, nil
}

// SystemExtensionApproved advances NeedsSystemExtensionApproval to
// NeedsVPNConfigurationApproval.
func (m *Machine) SystemExtensionApproved(ctx context.Context) (domain.OnboardingStatus, error) {
	return m.advance(ctx, domain.OnboardingNeedsSystemExtension, domain.OnboardingNeedsVPNConfiguration)
}

// VPNConfigurationApproved advances NeedsVPNConfigurationApproval to
// Completed. It does nothing at the system extension step.
func (m *Machine) VPNConfigurationApproved(ctx context.Context) (domain.OnboardingStatus, error) {
	return m.advance(ctx, domain.OnboardingNeedsVPNConfiguration, domain.OnboardingCompleted)
}

// Reset returns to the initial status. It is an explicit operator action,
// not a transition.
func (m *Machine) Reset(ctx context.Context) (domain.OnboardingStatus, error) {
	initial := domain.DefaultOnboardingStatus()
	if err := m.write(ctx, initial); err != nil {
		return m.Status(ctx), err
	}
	m.logger.Info().Msg("onboarding reset")
	return initial, nil
}

func (m *Machine) advance(ctx context.Context, from, to domain.OnboardingStatus) (domain.OnboardingStatus, error) {
	current, err := m.load(ctx)
	if err != nil {
		return domain.OnboardingStatus{}, err
	}
	if current != from {
		m.logger.Debug().Str("status", current.String()).Str("expected", from.String()).Msg("approval ignored")
		return current, nil
	}
	if err := m.write(ctx, to); err != nil {
		return current, err
	}
	m.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("onboarding advanced")
	return to, nil
}

func (m *Machine) write(ctx context.Context, status domain.OnboardingStatus) error {
	return m.storage.Set(ctx, storage.KeyOnboardingStatus, []byte(status.RawValue()))
}
