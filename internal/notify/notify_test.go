package notify

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/tiercache/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ domain.Notifier = (*Terminal)(nil)
	_ domain.Notifier = (*Log)(nil)
	_ domain.Notifier = Multi(nil)
)

func TestWriterPlain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWriter(&buf).Notify("Cache", "Could not read cache file")
	assert.Equal(t, "Cache: Could not read cache file\n", buf.String())
}

func TestNewTerminal_NotATerminal(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	n := NewTerminal(f)
	assert.False(t, n.styled)

	n.Notify("Cache", "hello")
	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "Cache: hello\n", string(data))
}

func TestLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewLog(slog.New(slog.NewTextHandler(&buf, nil))).Notify("Cache", "Could not read cache file")
	assert.Contains(t, buf.String(), "title=Cache")
	assert.Contains(t, buf.String(), `message="Could not read cache file"`)
}

func TestMulti(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	Multi{NewWriter(&a), NewWriter(&b), domain.NoOpNotifier{}}.Notify("T", "m")
	assert.Equal(t, "T: m\n", a.String())
	assert.Equal(t, "T: m\n", b.String())
}
