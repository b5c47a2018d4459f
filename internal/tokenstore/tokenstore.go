// Package tokenstore keeps the backend auth token sealed at rest.
//
// Tokens are encrypted with NaCl secretbox; the random 24-byte nonce is
// prepended to the ciphertext stored under storage.KeyAuthToken.
package tokenstore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/storage"
)

const nonceSize = 24

// TokenStore is the secure token port used by redemption and the tunnel
// controller.
type TokenStore interface {
	FetchToken(ctx context.Context) (string, error)
	StoreToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}

var _ TokenStore = (*Sealed)(nil)

// Sealed stores tokens encrypted in a storage.Storage.
type Sealed struct {
	store storage.Storage
	key   [32]byte
	rand  io.Reader
}

// New creates a sealed token store using key.
func New(store storage.Storage, key *[32]byte) *Sealed {
	return &Sealed{store: store, key: *key, rand: rand.Reader}
}

// FetchToken returns the stored token, domain.ErrNotFound when none has
// been stored, or domain.ErrTokenCorrupt when the sealed value cannot be
// opened with the configured key.
func (s *Sealed) FetchToken(ctx context.Context) (string, error) {
	sealed, err := s.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return "", err
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", domain.ErrTokenCorrupt
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", domain.ErrTokenCorrupt
	}
	return string(plain), nil
}

// StoreToken seals and persists token, replacing any previous one.
func (s *Sealed) StoreToken(ctx context.Context, token string) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.rand, nonce[:]); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key)
	return s.store.Set(ctx, storage.KeyAuthToken, sealed)
}

// DeleteToken removes the stored token.
func (s *Sealed) DeleteToken(ctx context.Context) error {
	return s.store.Delete(ctx, storage.KeyAuthToken)
}

// FetchOptional is FetchToken with absence mapped to an empty token.
func FetchOptional(ctx context.Context, ts TokenStore) (string, error) {
	token, err := ts.FetchToken(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	return token, err
}
