package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/tiercache/internal/domain"
)

// Session registry names owned by the cache. Entry values live under
// entryPrefix so they never collide with raw keys used outside the cache.
const (
	registryPrefix = "tiercache."
	indexKey       = registryPrefix + "index"
	flagsKey       = registryPrefix + "flags"
	entryPrefix    = registryPrefix + "entry."
)

// UseDefaultLifetime in Entry.LifetimeHours selects the configured default.
const UseDefaultLifetime = -1

// Entry is one write for SetMany.
type Entry struct {
	Key           string
	Value         any
	Persist       bool
	LifetimeHours int // 0 never expires, UseDefaultLifetime for the default
}

// TieredCache keeps entries in a session registry and persists the
// disk-eligible ones to a single JSON file on Flush.
type TieredCache struct {
	registry        domain.SessionRegistry
	files           domain.FileStore
	path            string
	logger          *slog.Logger
	notifier        domain.Notifier
	now             func() time.Time
	defaultLifetime int
	metrics         *cacheMetrics

	mu       sync.Mutex
	diskKeys *KeySet // nil until loaded
	flags    *KeySet // nil until loaded
}

// New creates a cache persisting to path through files.
func New(registry domain.SessionRegistry, files domain.FileStore, path string, opts ...Option) (*TieredCache, error) {
	o := applyOptions(opts...)

	metrics, err := newCacheMetrics(o.registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register cache metrics: %w", err)
	}

	return &TieredCache{
		registry:        registry,
		files:           files,
		path:            path,
		logger:          o.logger,
		notifier:        o.notifier,
		now:             o.now,
		defaultLifetime: o.defaultLifetime,
		metrics:         metrics,
	}, nil
}

// Path returns the cache file location.
func (c *TieredCache) Path() string {
	return c.path
}

// Get returns the encoded value stored under key.
// With checkDisk the key must also be in the disk-backed index, which is
// loaded from the session registry or the cache file on first use.
func (c *TieredCache) Get(key string, checkDisk bool) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	env, ok := c.lookup(key, checkDisk)
	if !ok {
		c.metrics.recordMiss()
		return nil, false
	}
	c.metrics.recordHit()
	return env.Data, true
}

// GetAs decodes the value stored under key into T.
func GetAs[T any](c *TieredCache, key string, checkDisk bool) (T, bool) {
	var v T
	raw, ok := c.Get(key, checkDisk)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("cached value does not match requested type", "key", key, "error", err)
		return v, false
	}
	return v, true
}

// GetOrFetch returns the cached value for key, or calls fetch and stores its
// result. Persisted results are looked up through the disk-backed index.
// The caller still owns the Flush.
func GetOrFetch[T any](c *TieredCache, key string, persist bool, lifetimeHours int, fetch func() (T, error)) (T, error) {
	if v, ok := GetAs[T](c, key, persist); ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	if err := c.SetMany([]Entry{{Key: key, Value: v, Persist: persist, LifetimeHours: lifetimeHours}}); err != nil {
		return v, err
	}
	return v, nil
}

// Set stores value with the default lifetime.
func (c *TieredCache) Set(key string, value any, persist bool) error {
	return c.SetMany([]Entry{{Key: key, Value: value, Persist: persist, LifetimeHours: UseDefaultLifetime}})
}

// SetWithLifetime stores value with an explicit lifetime in hours.
func (c *TieredCache) SetWithLifetime(key string, value any, persist bool, hours int) error {
	if hours < 0 {
		return fmt.Errorf("invalid lifetime %d for %q", hours, key)
	}
	return c.SetMany([]Entry{{Key: key, Value: value, Persist: persist, LifetimeHours: hours}})
}

// SetMany stores several entries, updating the index and the dirty flag once.
// Nothing is written when any key is invalid or any value fails to encode.
func (c *TieredCache) SetMany(entries []Entry) error {
	encoded := make([]string, len(entries))
	for i, e := range entries {
		if err := ValidateName(e.Key); err != nil {
			return err
		}
		data, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("failed to encode %q: %w", e.Key, err)
		}
		lifetime := e.LifetimeHours
		if lifetime < 0 {
			lifetime = c.defaultLifetime
		}
		encoded[i], err = encodeEnvelope(envelope{
			Data:     data,
			Persist:  e.Persist,
			Lifetime: lifetime,
		}, c.epochHour())
		if err != nil {
			return fmt.Errorf("failed to encode %q: %w", e.Key, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A first load rehydrates file records into the registry; it must not
	// overwrite the values written below.
	c.ensureIndexLoaded()

	indexChanged := false
	for i, e := range entries {
		if err := c.registry.SetString(entryPrefix+e.Key, encoded[i]); err != nil {
			c.logger.Warn("failed to store cache entry", "key", e.Key, "error", err)
			continue
		}

		if e.Persist {
			if c.diskKeys.Add(e.Key) {
				indexChanged = true
			}
			// Rewritten values must reach disk even when the key was known.
			c.setFlagLocked(flagDirty)
			continue
		}

		// A memory-only write replaces any persisted copy of the key.
		if c.diskKeys.Remove(e.Key) {
			indexChanged = true
			c.setFlagLocked(flagDirty)
		}
	}

	if indexChanged {
		c.storeIndex()
	}
	c.metrics.recordSets(len(entries))
	return nil
}

// Delete removes key from the session registry, and from the disk-backed
// index when checkDisk is set. The next Flush drops it from the file.
func (c *TieredCache) Delete(key string, checkDisk bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.registry.ClearString(entryPrefix + key); err != nil {
		c.logger.Warn("failed to clear cache entry", "key", key, "error", err)
	}
	c.metrics.recordDelete()

	if !checkDisk {
		return
	}
	c.ensureIndexLoaded()
	if c.diskKeys.Remove(key) {
		c.storeIndex()
		c.setFlagLocked(flagDirty)
	}
}

// Flush rewrites the cache file when persisted state changed since the last
// write. Write failures keep the dirty flag so a later Flush retries.
// A file that could not be read this session is copied to CorruptPath and
// replaced by the session's snapshot.
func (c *TieredCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.testFlagLocked(flagDirty) {
		return
	}
	c.ensureIndexLoaded()
	repairing := c.testFlagLocked(flagLoadFailed)
	if repairing {
		c.backupUnreadableFile()
	}

	records := make([]record, 0, c.diskKeys.Len())
	for _, key := range c.diskKeys.Items() {
		env, ok := c.readEnvelope(key)
		if !ok || !env.Persist {
			continue
		}
		records = append(records, record{
			Version:  CurrentFormatVersion,
			Key:      key,
			Data:     env.Data,
			Lifetime: env.Lifetime,
			Epoch:    env.Epoch,
		})
	}

	if err := c.writeFile(records); err != nil {
		c.logger.Warn("cache flush failed", "path", c.path, "error", err)
		c.metrics.recordFlushFailure()
		return
	}

	c.clearFlagLocked(flagDirty)
	if repairing {
		c.clearFlagLocked(flagLoadFailed)
		c.logger.Info("replaced unreadable cache file", "path", c.path, "records", len(records))
	}
	c.metrics.recordFlush()
	c.logger.Debug("cache flushed", "path", c.path, "records", len(records))
}

// CorruptPath returns where Flush keeps a copy of an unreadable cache file.
func (c *TieredCache) CorruptPath() string {
	return c.path + ".corrupt"
}

// backupUnreadableFile copies the current file aside before it is replaced.
// Files that cannot be read at all are not copied.
func (c *TieredCache) backupUnreadableFile() {
	if !c.files.Exists(c.path) {
		return
	}
	data, err := c.files.ReadAll(c.path)
	if err != nil {
		c.logger.Warn("cannot copy unreadable cache file", "path", c.path, "error", err)
		return
	}
	if err := c.files.WriteAll(c.CorruptPath(), data); err != nil {
		c.logger.Warn("failed to copy unreadable cache file", "path", c.CorruptPath(), "error", err)
	}
}

// ClearAll deletes the cache file and every entry the cache indexed, and
// resets the index and flags.
func (c *TieredCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.files.Delete(c.path); err != nil {
		c.logger.Warn("failed to delete cache file", "path", c.path, "error", err)
	}

	if c.peekIndex() {
		for _, key := range c.diskKeys.Items() {
			if err := c.registry.ClearString(entryPrefix + key); err != nil {
				c.logger.Warn("failed to clear cache entry", "key", key, "error", err)
			}
		}
	}
	for _, name := range []string{indexKey, flagsKey} {
		if err := c.registry.ClearString(name); err != nil {
			c.logger.Warn("failed to clear cache state", "name", name, "error", err)
		}
	}

	c.diskKeys = nil
	c.flags = nil
	c.metrics.updateDiskKeys(0)
	c.logger.Info("cache cleared", "path", c.path)
}

// Keys returns the disk-backed keys in insertion order.
func (c *TieredCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureIndexLoaded()
	return c.diskKeys.Items()
}

// Inspect returns metadata for key without decoding its value.
func (c *TieredCache) Inspect(key string) (EntryInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	env, ok := c.readEnvelope(key)
	if !ok {
		return EntryInfo{}, false
	}
	indexed := c.peekIndex() && c.diskKeys.Has(key)
	return EntryInfo{
		Key:              key,
		Persist:          env.Persist,
		Indexed:          indexed,
		LifetimeHours:    env.Lifetime,
		CreatedEpochHour: env.Epoch,
		Size:             len(env.Data),
	}, true
}

// Dirty reports whether persisted state differs from the last written file.
func (c *TieredCache) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.testFlagLocked(flagDirty)
}

// Degraded reports whether the cache file could not be read this session.
func (c *TieredCache) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.testFlagLocked(flagLoadFailed)
}

func (c *TieredCache) epochHour() int64 {
	return EpochHour(c.now())
}

func (c *TieredCache) lookup(key string, checkDisk bool) (envelope, bool) {
	if checkDisk {
		c.ensureIndexLoaded()
		if !c.diskKeys.Has(key) {
			return envelope{}, false
		}
	}
	return c.readEnvelope(key)
}

func (c *TieredCache) readEnvelope(key string) (envelope, bool) {
	raw, ok := c.registry.GetString(entryPrefix + key)
	if !ok {
		return envelope{}, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		c.logger.Warn("discarding malformed cache entry", "key", key, "error", err)
		return envelope{}, false
	}
	return env, true
}

func (c *TieredCache) writeEnvelope(key string, env envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.registry.SetString(entryPrefix+key, string(raw))
}

// encodeEnvelope stamps env with epoch and encodes it for the registry.
func encodeEnvelope(env envelope, epoch int64) (string, error) {
	env.Epoch = epoch
	raw, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (c *TieredCache) writeFile(records []record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := c.files.EnsureDirectory(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFileUnwritable, err)
	}
	if err := c.files.WriteAll(c.path, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFileUnwritable, err)
	}
	return nil
}
