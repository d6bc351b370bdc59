package cache

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mmcdole/tiercache/internal/domain"
)

// loadResult summarizes one pass over the cache file.
type loadResult struct {
	Loaded  int
	Dropped int
	Created bool
}

// peekIndex loads the index from the session registry only.
// Reports whether the index is available.
func (c *TieredCache) peekIndex() bool {
	if c.diskKeys != nil {
		return true
	}
	raw, ok := c.registry.GetString(indexKey)
	if !ok {
		return false
	}
	c.diskKeys = ParseKeySet(raw)
	c.metrics.updateDiskKeys(c.diskKeys.Len())
	return true
}

// ensureIndexLoaded makes diskKeys usable, reading the cache file when the
// session registry does not hold an index yet. It never fails: an unreadable
// file leaves an empty index and the load-failed flag for the session.
func (c *TieredCache) ensureIndexLoaded() {
	if c.peekIndex() {
		return
	}

	c.diskKeys = NewKeySet()
	if c.testFlagLocked(flagLoadFailed) {
		c.storeIndex()
		return
	}

	result, err := c.loadFromFile()
	if err != nil {
		c.diskKeys = NewKeySet()
		c.setFlagLocked(flagLoadFailed)
		c.storeIndex()
		c.logger.Warn("cache file unreadable, continuing in memory only", "path", c.path, "error", err)
		c.notifier.Notify("Cache", "Could not read cache file")
		return
	}

	c.logger.Debug("cache index loaded",
		"path", c.path,
		"loaded", result.Loaded,
		"dropped", result.Dropped,
		"created", result.Created,
	)
}

// loadFromFile rehydrates every live record of the cache file into the
// session registry and the index. Records that expired or carry an older
// format version are dropped and mark the cache dirty so the next Flush
// rewrites the file without them. A missing file is replaced by a blank one.
// Nothing is modified when the file cannot be read or parsed.
func (c *TieredCache) loadFromFile() (loadResult, error) {
	var result loadResult

	if !c.files.Exists(c.path) {
		if err := c.writeFile([]record{}); err != nil {
			c.logger.Warn("failed to create blank cache file", "path", c.path, "error", err)
		} else {
			result.Created = true
		}
		c.storeIndex()
		return result, nil
	}

	data, err := c.files.ReadAll(c.path)
	if err != nil {
		return result, fmt.Errorf("%w: %w", domain.ErrFileUnreadable, err)
	}
	raws, legacy, err := decodeDocument(data)
	if err != nil {
		return result, fmt.Errorf("%w: %w", domain.ErrFileUnreadable, err)
	}
	result.Dropped = legacy

	now := c.epochHour()
	for _, raw := range raws {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			result.Dropped++
			continue
		}
		if err := r.check(now); err != nil {
			c.logger.Debug("dropping cached record", "key", r.Key, "reason", err)
			result.Dropped++
			continue
		}
		if err := c.writeEnvelope(r.Key, r.envelope()); err != nil {
			c.logger.Warn("failed to rehydrate cache entry", "key", r.Key, "error", err)
			continue
		}
		if !c.diskKeys.Add(r.Key) {
			// Duplicate key: the later record wins, the rewrite removes the other.
			result.Dropped++
			continue
		}
		result.Loaded++
	}

	if result.Dropped > 0 {
		c.setFlagLocked(flagDirty)
		c.metrics.recordDropped(result.Dropped)
	}
	c.storeIndex()
	return result, nil
}

// decodeDocument splits the cache file into raw records. Documents that are a
// JSON object predate the record format; all of their content counts as
// dropped.
func decodeDocument(data []byte) ([]json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var legacy map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, 0, err
		}
		return nil, max(len(legacy), 1), nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, 0, err
	}
	return raws, 0, nil
}

func (c *TieredCache) storeIndex() {
	if err := c.registry.SetString(indexKey, c.diskKeys.String()); err != nil {
		c.logger.Warn("failed to store cache index", "error", err)
	}
	c.metrics.updateDiskKeys(c.diskKeys.Len())
}
