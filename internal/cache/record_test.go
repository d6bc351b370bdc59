package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mmcdole/tiercache/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExpired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lifetime int
		epoch    int64
		now      int64
		want     bool
	}{
		{"forever", 0, 0, 1 << 40, false},
		{"negative", -1, 100, 100, true},
		{"fresh", 72, 100, 100, false},
		{"boundary", 72, 100, 172, false},
		{"past boundary", 72, 100, 173, true},
		{"skewed back", 72, 100, 28, false},
		{"skewed far back", 72, 100, 27, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, expired(tt.lifetime, tt.epoch, tt.now))
		})
	}
}

func TestRecordCheck(t *testing.T) {
	t.Parallel()

	live := record{Version: CurrentFormatVersion, Key: "k", Data: json.RawMessage(`1`), Lifetime: 1, Epoch: 10}
	assert.NoError(t, live.check(10))

	stale := live
	stale.Version = 1
	assert.ErrorIs(t, stale.check(10), domain.ErrStaleFormat)

	assert.ErrorIs(t, live.check(12), domain.ErrExpired)

	badKey := live
	badKey.Key = ""
	assert.ErrorIs(t, badKey.check(10), domain.ErrInvalidName)

	env := live.envelope()
	assert.True(t, env.Persist)
	assert.Equal(t, int64(10), env.Epoch)
}

func TestEpochHour(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 12, 59, 59, 0, time.UTC)
	hour := EpochHour(at)
	assert.Equal(t, at.Unix()/3600, hour)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix(), HourTime(hour).Unix())
}

func TestEntryInfoForever(t *testing.T) {
	t.Parallel()

	_, ok := EntryInfo{LifetimeHours: 0}.ExpiresAt()
	assert.False(t, ok)
}
