package storage

import "context"

// Application-scoped setting keys.
const (
	KeyAppRoutingRules  = "vpn.appRoutingRules"
	KeyExcludedDomains  = "vpn.excludedDomains"
	KeyOnboardingStatus = "vpn.onboardingStatus"
	KeyLastVersionRun   = "vpn.lastVersionRun"
	KeyAuthToken        = "vpn.authToken"
)

// Storage defines the persisted key-value settings store.
// Implementations must be safe for concurrent use. Each key is an
// independent atomic cell; there are no cross-key transactions.
type Storage interface {
	// Get returns the value stored under key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close closes the storage connection.
	Close() error
}
