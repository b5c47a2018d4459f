package tunnel

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/metrics"
)

var allStatuses = []string{
	domain.StatusInvalid.String(),
	domain.StatusDisconnected.String(),
	domain.StatusConnecting.String(),
	domain.StatusConnected.String(),
	domain.StatusReasserting.String(),
	domain.StatusDisconnecting.String(),
}

// Monitor polls the active session and turns status changes into
// StatusChangeEvents routed through the Locator.
type Monitor struct {
	locator  *Locator
	interval time.Duration
	logger   zerolog.Logger
	onChange func(Session)

	last    domain.ConnectionStatus
	hasLast bool
}

// NewMonitor creates a Monitor polling every interval. onChange, if set, is
// called with every session that survives SessionFromStatusChange.
func NewMonitor(locator *Locator, interval time.Duration, onChange func(Session), logger zerolog.Logger) *Monitor {
	return &Monitor{
		locator:  locator,
		interval: interval,
		onChange: onChange,
		logger:   logger.With().Str("component", "tunnel_monitor").Logger(),
	}
}

// Run polls until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Poll checks the session once and emits an event if its status changed.
func (m *Monitor) Poll(ctx context.Context) {
	session, err := m.locator.ActiveSession(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Warn().Err(err).Msg("loading tunnel configurations failed")
		}
		return
	}

	status := domain.StatusDisconnected
	if session != nil {
		status = session.Status()
	}
	if m.hasLast && status == m.last {
		return
	}
	previous := m.last
	m.last, m.hasLast = status, true

	metrics.SetTunnelStatus(status.String(), allStatuses)
	if session == nil {
		m.logger.Info().Msg("no tunnel session")
		return
	}

	resolved := m.locator.SessionFromStatusChange(StatusChangeEvent{Object: session})
	if resolved == nil {
		m.logger.Info().Str("status", status.String()).Msg("tunnel status invalid, configuration reload requested")
		return
	}

	m.logger.Info().
		Str("from", previous.String()).
		Str("to", status.String()).
		Msg("tunnel status changed")
	if m.onChange != nil {
		m.onChange(resolved)
	}
}
