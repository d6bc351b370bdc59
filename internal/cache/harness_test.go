package cache

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/tiercache/internal/filestore"
	"github.com/mmcdole/tiercache/internal/registry"
	"github.com/stretchr/testify/require"
)

const testPath = "/data/tiercache/cache.json"

// baseTime sits exactly on an hour boundary.
var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(hours int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Duration(hours) * time.Hour)
}

// countingStore counts successful writes and can be told to fail.
type countingStore struct {
	*filestore.Store
	writes     int
	failWrites bool
	failReads  bool
}

var errInjected = errors.New("injected failure")

func (s *countingStore) WriteAll(path string, data []byte) error {
	if s.failWrites {
		return errInjected
	}
	if err := s.Store.WriteAll(path, data); err != nil {
		return err
	}
	s.writes++
	return nil
}

func (s *countingStore) ReadAll(path string) ([]byte, error) {
	if s.failReads {
		return nil, errInjected
	}
	return s.Store.ReadAll(path)
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(title, message string) {
	n.messages = append(n.messages, title+": "+message)
}

// harness owns the collaborators that outlive one cache instance.
type harness struct {
	registry *registry.MemoryRegistry
	files    *countingStore
	clock    *fakeClock
	notifier *recordingNotifier
}

func newHarness() *harness {
	return &harness{
		registry: registry.NewMemory(),
		files:    &countingStore{Store: filestore.NewMemory()},
		clock:    &fakeClock{now: baseTime},
		notifier: &recordingNotifier{},
	}
}

// open creates a cache instance sharing the current session.
func (h *harness) open(t *testing.T, opts ...Option) *TieredCache {
	t.Helper()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithNotifier(h.notifier),
		WithClock(h.clock.Now),
	}, opts...)
	c, err := New(h.registry, h.files, testPath, opts...)
	require.NoError(t, err)
	return c
}

// newSession drops the session registry and keeps the file, like a restart.
func (h *harness) newSession(t *testing.T, opts ...Option) *TieredCache {
	t.Helper()
	h.registry.Reset()
	return h.open(t, opts...)
}

func (h *harness) writeFile(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, h.files.Store.EnsureDirectory("/data/tiercache"))
	require.NoError(t, h.files.Store.WriteAll(testPath, []byte(content)))
}

func (h *harness) readRecords(t *testing.T) []record {
	t.Helper()
	data, err := h.files.Store.ReadAll(testPath)
	require.NoError(t, err)
	var records []record
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func recordJSON(t *testing.T, r record) string {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return string(data)
}
