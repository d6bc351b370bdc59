package cache

import (
	"fmt"
	"strings"

	"github.com/mmcdole/tiercache/internal/domain"
)

// Flags reserved by the cache. Caller flags may not use the prefix.
const (
	reservedFlagPrefix = "_"
	flagDirty          = reservedFlagPrefix + "dirty"
	flagLoadFailed     = reservedFlagPrefix + "loadfailed"
)

func validateFlagName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if strings.HasPrefix(name, reservedFlagPrefix) {
		return fmt.Errorf("%w: %q uses the reserved prefix %q", domain.ErrInvalidName, name, reservedFlagPrefix)
	}
	return nil
}

// TestFlag reports whether the session marker name is set.
// Invalid names are never set.
func (c *TieredCache) TestFlag(name string) bool {
	if validateFlagName(name) != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.testFlagLocked(name)
}

// SetFlag sets the session marker name.
func (c *TieredCache) SetFlag(name string) error {
	if err := validateFlagName(name); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setFlagLocked(name)
	return nil
}

// ClearFlag clears the session marker name.
func (c *TieredCache) ClearFlag(name string) error {
	if err := validateFlagName(name); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearFlagLocked(name)
	return nil
}

// Flags returns the caller-visible session markers.
func (c *TieredCache) Flags() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadFlags()
	var out []string
	for _, name := range c.flags.Items() {
		if !strings.HasPrefix(name, reservedFlagPrefix) {
			out = append(out, name)
		}
	}
	return out
}

func (c *TieredCache) loadFlags() {
	if c.flags != nil {
		return
	}
	raw, _ := c.registry.GetString(flagsKey)
	c.flags = ParseKeySet(raw)
}

func (c *TieredCache) testFlagLocked(name string) bool {
	c.loadFlags()
	return c.flags.Has(name)
}

func (c *TieredCache) setFlagLocked(name string) {
	c.loadFlags()
	if c.flags.Add(name) {
		c.storeFlags()
	}
}

func (c *TieredCache) clearFlagLocked(name string) {
	c.loadFlags()
	if c.flags.Remove(name) {
		c.storeFlags()
	}
}

func (c *TieredCache) storeFlags() {
	var err error
	if c.flags.Len() == 0 {
		err = c.registry.ClearString(flagsKey)
	} else {
		err = c.registry.SetString(flagsKey, c.flags.String())
	}
	if err != nil {
		c.logger.Warn("failed to store cache flags", "error", err)
	}
}
