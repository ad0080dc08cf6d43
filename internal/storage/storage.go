package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tiliavir/heatlog/internal/config"
	"github.com/Tiliavir/heatlog/internal/model"
)

// Slot names a single persisted string value in the local cache.
type Slot string

const (
	// SlotRecords holds the JSON-serialized full record mapping.
	SlotRecords Slot = "records"
	// SlotCredential holds an opaque backend credential.
	SlotCredential Slot = "credential"
)

// Cache is a string-keyed persisted store with a handful of slots.
type Cache interface {
	// Get returns the slot value and whether it was present.
	Get(ctx context.Context, slot Slot) (string, bool, error)
	Set(ctx context.Context, slot Slot, value string) error
	Delete(ctx context.Context, slot Slot) error
	Close() error
}

// Open returns the cache implementation selected by driver, rooted at dir.
func Open(driver config.CacheDriver, dir string) (Cache, error) {
	switch driver {
	case config.CacheFile, "":
		return NewFileCache(dir), nil
	case config.CacheSQLite:
		return OpenSQLiteCache(filepath.Join(dir, "heatlog.db"))
	default:
		return nil, fmt.Errorf("storage error: unknown cache driver %q", driver)
	}
}

// FileCache keeps every slot in its own file below dir.
type FileCache struct {
	dir string
}

// NewFileCache returns a FileCache rooted at dir. The directory is created
// lazily on first write.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

func (c *FileCache) slotPath(slot Slot) string {
	return filepath.Join(c.dir, string(slot)+".slot")
}

// Get reads a slot. A missing file is reported as absent, not as an error.
func (c *FileCache) Get(_ context.Context, slot Slot) (string, bool, error) {
	path := c.slotPath(slot)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return string(data), true, nil
}

// Set atomically writes a slot.
func (c *FileCache) Set(_ context.Context, slot Slot, value string) error {
	path := c.slotPath(slot)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(value), 0o600); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Delete removes a slot; deleting an absent slot is not an error.
func (c *FileCache) Delete(_ context.Context, slot Slot) error {
	if err := os.Remove(c.slotPath(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error removing slot %s: %w", slot, err)
	}
	return nil
}

// Close is a no-op for the file cache.
func (c *FileCache) Close() error { return nil }

// LoadRecords reads the records slot. ok is false when the slot is absent.
func LoadRecords(ctx context.Context, c Cache) (model.Records, bool, error) {
	data, ok, err := c.Get(ctx, SlotRecords)
	if err != nil || !ok {
		return nil, false, err
	}
	rs, err := model.DecodeRecords([]byte(data))
	if err != nil {
		return nil, false, fmt.Errorf("storage error: corrupt records slot: %w", err)
	}
	return rs, true, nil
}

// SaveRecords serializes rs into the records slot.
func SaveRecords(ctx context.Context, c Cache, rs model.Records) error {
	data, err := model.EncodeRecords(rs)
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	return c.Set(ctx, SlotRecords, string(data))
}
