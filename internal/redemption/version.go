package redemption

import (
	"context"
	"errors"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/storage"
)

// VersionStore records the app version at the last successful redemption.
type VersionStore interface {
	LastVersionRun(ctx context.Context) (string, error)
	SetLastVersionRun(ctx context.Context, version string) error
}

var _ VersionStore = (*StorageVersionStore)(nil)

// StorageVersionStore keeps LastVersionRun in the settings store.
type StorageVersionStore struct {
	storage storage.Storage
}

// NewVersionStore creates a VersionStore over store.
func NewVersionStore(store storage.Storage) *StorageVersionStore {
	return &StorageVersionStore{storage: store}
}

// LastVersionRun returns the recorded version, or "" when none is stored.
func (s *StorageVersionStore) LastVersionRun(ctx context.Context) (string, error) {
	raw, err := s.storage.Get(ctx, storage.KeyLastVersionRun)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SetLastVersionRun records version.
func (s *StorageVersionStore) SetLastVersionRun(ctx context.Context, version string) error {
	return s.storage.Set(ctx, storage.KeyLastVersionRun, []byte(version))
}
