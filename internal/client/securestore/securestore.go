// Package securestore persists the client's credentials (device id and
// access token) encrypted at rest. Values are sealed with AES-GCM under a
// key derived from a per-install random secret kept next to the cache file.
package securestore

import (
	"context"
	"fmt"
	"os"

	"github.com/notelinkapp/notelink/internal/client/repositories/metadata"
	"github.com/notelinkapp/notelink/internal/cryptox"
)

// keyDerivationSalt is fixed: uniqueness comes from the per-install secret,
// the salt only separates this derivation from other uses of the secret.
var keyDerivationSalt = []byte("notelink-securestore-v1")

type Store struct {
	repo metadata.Repository
	key  []byte
}

// New builds a Store over the metadata repository. The per-install secret is
// read from secretPath, generated on first use.
func New(repo metadata.Repository, secretPath string) (*Store, error) {
	secret, err := loadOrCreateSecret(secretPath)
	if err != nil {
		return nil, err
	}
	return &Store{repo: repo, key: cryptox.DeriveKey(secret, keyDerivationSalt)}, nil
}

func loadOrCreateSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil && len(secret) > 0 {
		return secret, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("secret read error: %w", err)
	}

	secret, err = cryptox.RandBytes(32)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("secret write error: %w", err)
	}
	return secret, nil
}

// Get returns the decrypted value for key, or nil when absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if sealed == nil {
		return nil, nil
	}
	return cryptox.Open(s.key, sealed)
}

// Set seals value and stores it under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(s.key, value)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, key, sealed)
}

// Delete removes the value stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}
