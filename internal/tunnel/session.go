// Package tunnel locates and drives the OS-managed VPN tunnel session.
package tunnel

import (
	"context"

	"github.com/bcnelson/netguard/internal/domain"
)

// Session is the OS connection object belonging to a tunnel configuration.
// It is owned by the OS; this package resolves it but never creates one.
type Session interface {
	Status() domain.ConnectionStatus
	Start(ctx context.Context, options map[string]string) error
	Stop(ctx context.Context) error
	// Reload re-reads the owning configuration from system preferences.
	Reload(ctx context.Context) error
}

// Configuration is one tunnel configuration known to the OS.
type Configuration interface {
	// Session returns the configuration's connection, or nil when it has none.
	Session() Session
}

// ConfigurationManager loads the tunnel configurations known to the OS.
type ConfigurationManager interface {
	LoadAll(ctx context.Context) ([]Configuration, error)
}

// StatusChangeEvent is an OS connection status notification. Object is the
// notification's subject; only Session subjects are meaningful.
type StatusChangeEvent struct {
	Object any
}
