package registry

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmcdole/tiercache/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ domain.SessionRegistry = (*MemoryRegistry)(nil)
	_ domain.SessionRegistry = (*BoltRegistry)(nil)
)

func TestMemoryRegistry(t *testing.T) {
	t.Parallel()

	r := NewMemory()

	_, ok := r.GetString("a")
	assert.False(t, ok)

	require.NoError(t, r.SetString("a", ""))
	v, ok := r.GetString("a")
	assert.True(t, ok, "empty value is still present")
	assert.Empty(t, v)

	require.NoError(t, r.SetString("a", "1"))
	v, _ = r.GetString("a")
	assert.Equal(t, "1", v)

	require.NoError(t, r.ClearString("a"))
	_, ok = r.GetString("a")
	assert.False(t, ok)

	require.NoError(t, r.SetString("b", "2"))
	r.Reset()
	assert.Equal(t, 0, r.Len())
}

func openTestBolt(t *testing.T, path, namespace, session string) *BoltRegistry {
	t.Helper()
	r, err := OpenBolt(path, namespace, session)
	require.NoError(t, err)
	return r
}

func TestBoltRegistry_GetSetClear(t *testing.T) {
	t.Parallel()

	r := openTestBolt(t, filepath.Join(t.TempDir(), "registry.db"), "ns", "s1")
	defer r.Close()

	_, ok := r.GetString("missing")
	assert.False(t, ok)

	require.NoError(t, r.SetString("empty", ""))
	v, ok := r.GetString("empty")
	assert.True(t, ok)
	assert.Empty(t, v)

	// A longer name sorting after the requested one must not match.
	require.NoError(t, r.SetString("keyz", "x"))
	_, ok = r.GetString("key")
	assert.False(t, ok)

	require.NoError(t, r.SetString("key", "value"))
	v, ok = r.GetString("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	require.NoError(t, r.ClearString("key"))
	_, ok = r.GetString("key")
	assert.False(t, ok)

	assert.Equal(t, []string{"empty", "keyz"}, r.Names())
}

func TestBoltRegistry_SessionScope(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "registry.db")

	r := openTestBolt(t, path, "ns", "s1")
	require.NoError(t, r.SetString("a", "1"))
	require.NoError(t, r.Close())

	// Same session sees the value.
	r = openTestBolt(t, path, "ns", "s1")
	v, ok := r.GetString("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	require.NoError(t, r.Close())

	// A new session starts empty.
	r = openTestBolt(t, path, "ns", "s2")
	_, ok = r.GetString("a")
	assert.False(t, ok)
	require.NoError(t, r.Close())
}

func TestBoltRegistry_NamespacesAreIsolated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "registry.db")

	a := openTestBolt(t, path, "a", "s1")
	require.NoError(t, a.SetString("k", "from-a"))
	require.NoError(t, a.Close())

	b := openTestBolt(t, path, "b", "s1")
	_, ok := b.GetString("k")
	assert.False(t, ok)
	require.NoError(t, b.Close())
}

func TestBoltRegistry_Reset(t *testing.T) {
	t.Parallel()

	r := openTestBolt(t, filepath.Join(t.TempDir(), "registry.db"), "ns", "s1")
	defer r.Close()

	require.NoError(t, r.SetString("a", "1"))
	require.NoError(t, r.Reset())
	assert.Empty(t, r.Names())

	require.NoError(t, r.SetString("b", "2"))
	_, ok := r.GetString("b")
	assert.True(t, ok)
}

func TestBoltRegistry_Closed(t *testing.T) {
	t.Parallel()

	r := openTestBolt(t, filepath.Join(t.TempDir(), "registry.db"), "ns", "s1")
	require.NoError(t, r.Close())

	assert.ErrorIs(t, r.SetString("a", "1"), domain.ErrRegistryClosed)
	assert.ErrorIs(t, r.ClearString("a"), domain.ErrRegistryClosed)
	_, ok := r.GetString("a")
	assert.False(t, ok)
	assert.NoError(t, r.Close())
}

func TestOpenBolt_RequiresNamespace(t *testing.T) {
	t.Parallel()

	_, err := OpenBolt(filepath.Join(t.TempDir(), "registry.db"), "", "s1")
	assert.Error(t, err)
}

func TestNamespace(t *testing.T) {
	t.Parallel()

	a := Namespace("/tmp/cache/cache.json")
	assert.True(t, strings.HasPrefix(a, "cache-"))
	assert.Equal(t, a, Namespace("/tmp/cache/../cache/cache.json"))
	assert.NotEqual(t, a, Namespace("/tmp/other/cache.json"))
}

func TestSessionIDs(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, NewSessionID(), NewSessionID())
	assert.Equal(t, DefaultSessionID(), DefaultSessionID())
	assert.True(t, strings.HasPrefix(DefaultSessionID(), "ppid-"))
}
