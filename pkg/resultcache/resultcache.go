// Package resultcache caches serialized analysis reports so repeated
// lookups of the same profile do not re-scrape it. The CLI uses a
// disk-backed cache that snapshots to a gob file; the server runs
// memory-only.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

const snapshotFile = "tweetbeat-cache.gob"

// Entry is one cached payload with its expiry.
type Entry struct {
	ExpiresAt time.Time
	Data      []byte
}

// Cache is a TTL-bounded key/value store for report payloads.
type Cache struct {
	cache      *otter.Cache[string, Entry]
	logger     *slog.Logger
	saveCancel context.CancelFunc
	dir        string
	saveWg     sync.WaitGroup
	ttl        time.Duration
	mu         sync.Mutex
}

// New creates a disk-backed cache in dir, loading any previous
// snapshot and saving periodically until Close.
func New(ctx context.Context, dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := newMemory(ttl, logger)
	c.dir = dir

	if err := c.loadSnapshot(); err != nil {
		logger.Warn("failed to load cache snapshot", "error", err)
	}
	logger.Info("cache initialized", "dir", dir, "entries", c.cache.EstimatedSize())

	c.startPeriodicSave(ctx)
	return c, nil
}

// NewMemory creates a memory-only cache with no disk persistence.
func NewMemory(ttl time.Duration, logger *slog.Logger) *Cache {
	return newMemory(ttl, logger)
}

func newMemory(ttl time.Duration, logger *slog.Logger) *Cache {
	cache := otter.Must(&otter.Options[string, Entry]{
		MaximumSize:      10_000,
		InitialCapacity:  1_000,
		ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
	})
	return &Cache{cache: cache, ttl: ttl, logger: logger}
}

// Key derives a stable cache key for an analysis request.
func Key(username string, demo bool, offsetHours float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "analyze:%s:%t:%g", username, demo, offsetHours)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached payload for key, if present and fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	entry, found := c.cache.GetIfPresent(key)
	if !found {
		return nil, false
	}
	// Otter handles expiry, but guard against a stale snapshot load.
	if time.Now().After(entry.ExpiresAt) {
		c.cache.Invalidate(key)
		return nil, false
	}
	return entry.Data, true
}

// Set stores a payload under key for the cache TTL.
func (c *Cache) Set(key string, data []byte) {
	c.cache.Set(key, Entry{Data: data, ExpiresAt: time.Now().Add(c.ttl)})
}

func (c *Cache) loadSnapshot() error {
	path := filepath.Join(c.dir, snapshotFile)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache snapshot: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			c.logger.Debug("failed to close snapshot file", "error", closeErr)
		}
	}()

	var entries map[string]Entry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache snapshot: %w", err)
	}

	now := time.Now()
	loaded := 0
	for key, entry := range entries {
		if now.Before(entry.ExpiresAt) {
			c.cache.Set(key, entry)
			loaded++
		}
	}
	c.logger.Debug("loaded cache snapshot", "path", path, "total", len(entries), "valid", loaded)
	return nil
}

func (c *Cache) saveSnapshot() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.dir, snapshotFile)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Debug("failed to remove temp snapshot", "error", removeErr)
		}
	}()

	entries := make(map[string]Entry)
	now := time.Now()
	c.cache.All()(func(key string, entry Entry) bool {
		if now.Before(entry.ExpiresAt) {
			entries[key] = entry
		}
		return true
	})

	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	c.logger.Debug("cache snapshot saved", "entries", len(entries), "path", path)
	return nil
}

func (c *Cache) startPeriodicSave(ctx context.Context) {
	saveCtx, cancel := context.WithCancel(ctx)
	c.saveCancel = cancel

	c.saveWg.Add(1)
	go func() {
		defer c.saveWg.Done()

		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-saveCtx.Done():
				return
			case <-ticker.C:
				if err := c.saveSnapshot(); err != nil {
					c.logger.Error("periodic cache save failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the periodic saver and writes a final snapshot when the
// cache is disk-backed.
func (c *Cache) Close() error {
	if c.saveCancel != nil {
		c.saveCancel()
	}
	c.saveWg.Wait()

	if c.dir == "" {
		return nil
	}
	if err := c.saveSnapshot(); err != nil {
		c.logger.Error("final cache save failed", "error", err)
		return err
	}
	return nil
}
