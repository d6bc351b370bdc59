package cache

import (
	"encoding/json"
	"time"

	"github.com/mmcdole/tiercache/internal/domain"
)

// CurrentFormatVersion is stamped on every record written to the cache file.
// Records carrying an older version are dropped on load.
const CurrentFormatVersion = 2

// envelope is the session registry form of an entry.
type envelope struct {
	Data     json.RawMessage `json:"data"`
	Persist  bool            `json:"persist"`
	Lifetime int             `json:"lifetime"`
	Epoch    int64           `json:"epoch"`
}

// record is one element of the JSON array stored in the cache file.
type record struct {
	Version  int             `json:"version"`
	Key      string          `json:"key"`
	Data     json.RawMessage `json:"data"`
	Lifetime int             `json:"lifetime"`
	Epoch    int64           `json:"epoch"`
}

// check returns nil when the record may be rehydrated at hour now.
func (r record) check(now int64) error {
	if r.Version < CurrentFormatVersion {
		return domain.ErrStaleFormat
	}
	if ValidateName(r.Key) != nil {
		return domain.ErrInvalidName
	}
	if expired(r.Lifetime, r.Epoch, now) {
		return domain.ErrExpired
	}
	return nil
}

func (r record) envelope() envelope {
	return envelope{Data: r.Data, Persist: true, Lifetime: r.Lifetime, Epoch: r.Epoch}
}

// expired compares elapsed hours by absolute difference so a clock that moved
// backwards expires entries the same way as one that moved forwards.
// A zero lifetime never expires; a negative one is always expired.
func expired(lifetime int, epoch, now int64) bool {
	if lifetime == 0 {
		return false
	}
	if lifetime < 0 {
		return true
	}
	elapsed := now - epoch
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return elapsed > int64(lifetime)
}

// EpochHour converts t to whole hours since the Unix epoch.
func EpochHour(t time.Time) int64 {
	return t.Unix() / 3600
}

// HourTime converts an epoch hour back to a time.
func HourTime(hour int64) time.Time {
	return time.Unix(hour*3600, 0)
}

// EntryInfo describes a cached entry without its value.
type EntryInfo struct {
	Key              string
	Persist          bool
	Indexed          bool // listed in the disk-backed key index
	LifetimeHours    int
	CreatedEpochHour int64
	Size             int // encoded value size in bytes
}

// CreatedAt returns the hour the entry was created or last refreshed.
func (i EntryInfo) CreatedAt() time.Time {
	return HourTime(i.CreatedEpochHour)
}

// ExpiresAt returns the first hour at which a reload drops the entry.
// Returns false for entries that never expire.
func (i EntryInfo) ExpiresAt() (time.Time, bool) {
	if i.LifetimeHours == 0 {
		return time.Time{}, false
	}
	return HourTime(i.CreatedEpochHour + int64(i.LifetimeHours) + 1), true
}
