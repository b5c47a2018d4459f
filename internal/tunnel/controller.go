package tunnel

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/tokenstore"
)

// SessionSource resolves the active session.
type SessionSource interface {
	ActiveSession(ctx context.Context) (Session, error)
}

// OnboardingReader reports the current onboarding status.
type OnboardingReader interface {
	Status(ctx context.Context) domain.OnboardingStatus
}

// Controller starts and stops the tunnel.
type Controller struct {
	sessions   SessionSource
	onboarding OnboardingReader
	tokens     tokenstore.TokenStore
	logger     zerolog.Logger
	newID      func() string
}

// NewController creates a tunnel Controller.
func NewController(sessions SessionSource, onboarding OnboardingReader, tokens tokenstore.TokenStore, logger zerolog.Logger) *Controller {
	return &Controller{
		sessions:   sessions,
		onboarding: onboarding,
		tokens:     tokens,
		logger:     logger.With().Str("component", "tunnel_controller").Logger(),
		newID:      uuid.NewString,
	}
}

// Start connects the tunnel. It is a no-op when already connected.
func (c *Controller) Start(ctx context.Context) error {
	if status := c.onboarding.Status(ctx); status.IsOnboarding() {
		return fmt.Errorf("%w: %s", domain.ErrOnboardingIncomplete, status)
	}

	session, err := c.sessions.ActiveSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrNoConfiguration
	}

	switch session.Status() {
	case domain.StatusInvalid:
		return domain.ErrConnectionStatusInvalid
	case domain.StatusConnected:
		c.logger.Debug().Msg("tunnel already connected")
		return nil
	}

	token, err := tokenstore.FetchOptional(ctx, c.tokens)
	if err != nil {
		return fmt.Errorf("reading auth token: %w", err)
	}

	attemptID := c.newID()
	options := map[string]string{
		domain.OptionActivationAttemptID: attemptID,
		domain.OptionAuthToken:           token,
	}
	if err := session.Start(ctx, options); err != nil {
		return err
	}

	c.logger.Info().Str("activation_attempt_id", attemptID).Msg("tunnel start requested")
	return nil
}

// Stop disconnects the tunnel when it is active and does nothing otherwise.
func (c *Controller) Stop(ctx context.Context) error {
	session, err := c.sessions.ActiveSession(ctx)
	if err != nil {
		return err
	}
	if session == nil || !session.Status().IsActive() {
		return nil
	}
	if err := session.Stop(ctx); err != nil {
		return err
	}
	c.logger.Info().Msg("tunnel stop requested")
	return nil
}

// Status returns the session status, or StatusDisconnected when there is no
// session.
func (c *Controller) Status(ctx context.Context) (domain.ConnectionStatus, error) {
	session, err := c.sessions.ActiveSession(ctx)
	if err != nil {
		return domain.StatusInvalid, err
	}
	if session == nil {
		return domain.StatusDisconnected, nil
	}
	return session.Status(), nil
}
