// Package proxy publishes routing snapshots for the transparent proxy
// extension to pick up.
package proxy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
)

// Snapshot is the routing configuration consumed by the proxy extension.
type Snapshot struct {
	ID              string           `json:"id"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	AppRules        []domain.AppRule `json:"appRules"`
	ExcludedDomains []string         `json:"excludedDomains"`
}

// ETag identifies the snapshot's routing content. ID and GeneratedAt are
// not part of it, so republishing the same rules yields the same tag.
func (s *Snapshot) ETag() (string, error) {
	content, err := json.Marshal(struct {
		AppRules        []domain.AppRule `json:"appRules"`
		ExcludedDomains []string         `json:"excludedDomains"`
	}{s.AppRules, s.ExcludedDomains})
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:]), nil
}

// SettingsSink receives snapshots.
type SettingsSink interface {
	// Current returns the last published snapshot and its etag, or nil and
	// "" when nothing has been published.
	Current(ctx context.Context) (*Snapshot, string, error)
	// Push publishes snap. changed is false when the sink already held the
	// same content.
	Push(ctx context.Context, snap *Snapshot) (etag string, changed bool, err error)
}

var _ SettingsSink = (*FileSink)(nil)

// FileSink writes snapshots to a JSON file. Writes are atomic: the file is
// replaced by renaming a fully written temp file.
type FileSink struct {
	filePath string
	logger   zerolog.Logger

	mu sync.Mutex
}

// NewFileSink creates a file-based sink at filePath.
func NewFileSink(filePath string, logger zerolog.Logger) *FileSink {
	return &FileSink{
		filePath: filePath,
		logger:   logger.With().Str("component", "proxy_sink").Logger(),
	}
}

// Current reads the snapshot file.
func (f *FileSink) Current(ctx context.Context) (*Snapshot, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *FileSink) read() (*Snapshot, string, error) {
	data, err := os.ReadFile(f.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, "", fmt.Errorf("parsing snapshot file: %w", err)
	}
	etag, err := snap.ETag()
	if err != nil {
		return nil, "", err
	}
	return &snap, etag, nil
}

// Push writes snap unless the file already holds the same content.
func (f *FileSink) Push(ctx context.Context, snap *Snapshot) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	etag, err := snap.ETag()
	if err != nil {
		return "", false, fmt.Errorf("hashing snapshot: %w", err)
	}

	if _, current, err := f.read(); err != nil {
		f.logger.Warn().Err(err).Msg("existing snapshot unreadable, overwriting")
	} else if current == etag {
		return etag, false, nil
	}

	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := writeAtomic(f.filePath, data); err != nil {
		return "", false, err
	}

	f.logger.Info().Str("path", f.filePath).Str("etag", etag[:12]).Str("snapshot_id", snap.ID).Msg("snapshot written")
	return etag, true, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing snapshot file: %w", err)
	}
	return nil
}
