package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// DefaultSessionID ties the session to the parent process, so every
// invocation from the same shell shares a session.
func DefaultSessionID() string {
	return "ppid-" + strconv.Itoa(os.Getppid())
}

// Namespace derives a registry namespace from the cache file path, keeping
// caches for different files apart in one registry database.
func Namespace(cachePath string) string {
	normalized := strings.TrimRight(filepath.Clean(cachePath), string(filepath.Separator))
	if abs, err := filepath.Abs(normalized); err == nil {
		normalized = abs
	}
	return fmt.Sprintf("cache-%016x", xxhash.Sum64String(normalized))
}
