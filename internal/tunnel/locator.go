package tunnel

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/metrics"
)

const reloadTimeout = 30 * time.Second

// Locator resolves the current tunnel session.
type Locator struct {
	manager ConfigurationManager
	logger  zerolog.Logger
	reloads sync.WaitGroup
}

// NewLocator creates a Locator over manager.
func NewLocator(manager ConfigurationManager, logger zerolog.Logger) *Locator {
	return &Locator{
		manager: manager,
		logger:  logger.With().Str("component", "tunnel_locator").Logger(),
	}
}

// ActiveSession returns the session of the first configuration, or nil
// when there is no configuration or it has no connection. Only the first
// configuration is considered. Manager errors are returned unchanged.
func (l *Locator) ActiveSession(ctx context.Context) (Session, error) {
	configs, err := l.manager.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 || configs[0] == nil {
		return nil, nil
	}
	return configs[0].Session(), nil
}

// SessionFromStatusChange extracts the session from a status notification.
//
// A session reporting StatusInvalid is stale: one reload is started in the
// background and nil is returned. The caller should wait for the follow-up
// notification rather than treat nil as "no tunnel".
func (l *Locator) SessionFromStatusChange(event StatusChangeEvent) Session {
	session, ok := event.Object.(Session)
	if !ok || session == nil {
		return nil
	}
	if session.Status() == domain.StatusInvalid {
		l.kickReload(session)
		return nil
	}
	return session
}

// kickReload is fire-and-forget; failures are only logged.
func (l *Locator) kickReload(session Session) {
	metrics.SessionReloadsTotal.Inc()
	l.reloads.Add(1)
	go func() {
		defer l.reloads.Done()
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		if err := session.Reload(ctx); err != nil {
			l.logger.Warn().Err(err).Msg("reloading tunnel configuration failed")
			return
		}
		l.logger.Debug().Msg("tunnel configuration reloaded")
	}()
}

// Wait blocks until background reloads have finished.
func (l *Locator) Wait() {
	l.reloads.Wait()
}
