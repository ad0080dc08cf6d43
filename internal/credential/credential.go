package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/Tiliavir/heatlog/internal/logger"
	"github.com/Tiliavir/heatlog/internal/storage"
)

const (
	keyringService = "heatlog"
	keyringUser    = "backend-credential"
)

// ErrNotFound is returned when no credential is configured anywhere.
var ErrNotFound = errors.New("no backend credential configured")

// Source says where a credential was found or stored.
type Source string

const (
	SourceConfig  Source = "config"
	SourceKeyring Source = "keyring"
	SourceCache   Source = "cache"
)

// Resolver looks the backend credential up in config, the OS keyring and
// the local cache credential slot, in that order.
type Resolver struct {
	configured string
	cache      storage.Cache
}

// NewResolver returns a Resolver. configured is the value from config or
// environment and always wins when non-empty.
func NewResolver(configured string, cache storage.Cache) *Resolver {
	return &Resolver{configured: configured, cache: cache}
}

// Resolve returns the credential and its source, or ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context) (string, Source, error) {
	if r.configured != "" {
		return r.configured, SourceConfig, nil
	}

	v, err := keyring.Get(keyringService, keyringUser)
	switch {
	case err == nil && v != "":
		return v, SourceKeyring, nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("keyring unavailable", "error", err)
	}

	if r.cache != nil {
		v, ok, err := r.cache.Get(ctx, storage.SlotCredential)
		if err != nil {
			return "", "", fmt.Errorf("reading credential slot: %w", err)
		}
		if ok && v != "" {
			return v, SourceCache, nil
		}
	}
	return "", "", ErrNotFound
}

// Set stores value in the OS keyring, falling back to the cache slot when
// the keyring cannot be used.
func (r *Resolver) Set(ctx context.Context, value string) (Source, error) {
	if value == "" {
		return "", errors.New("credential cannot be empty")
	}
	err := keyring.Set(keyringService, keyringUser, value)
	if err == nil {
		return SourceKeyring, nil
	}
	logger.Warn("keyring unavailable, storing credential in local cache", "error", err)
	if r.cache == nil {
		return "", fmt.Errorf("failed to store credential: %w", err)
	}
	if err := r.cache.Set(ctx, storage.SlotCredential, value); err != nil {
		return "", fmt.Errorf("failed to store credential: %w", err)
	}
	return SourceCache, nil
}

// Clear removes the credential from both the keyring and the cache slot.
func (r *Resolver) Clear(ctx context.Context) error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.Debug("keyring delete failed", "error", err)
	}
	if r.cache != nil {
		return r.cache.Delete(ctx, storage.SlotCredential)
	}
	return nil
}
