package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mmcdole/tiercache/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// bucketSessions maps a namespace to the id of the session that owns it.
var bucketSessions = []byte("sessions")

// BoltRegistry is a session registry backed by a BoltDB file, so separate
// invocations of the program within one session share their values.
// Each namespace is a bucket; a namespace opened with a different session id
// starts empty.
type BoltRegistry struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBolt opens (or creates) the registry database at path.
func OpenBolt(path, namespace, sessionID string) (*BoltRegistry, error) {
	if namespace == "" {
		return nil, fmt.Errorf("registry namespace is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	r := &BoltRegistry{db: db, bucket: []byte(namespace)}
	if err := r.claim(sessionID); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// claim wipes the namespace when it belongs to another session.
func (r *BoltRegistry) claim(sessionID string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		sessions, err := tx.CreateBucketIfNotExists(bucketSessions)
		if err != nil {
			return err
		}
		if string(sessions.Get(r.bucket)) != sessionID {
			if err := resetBucket(tx, r.bucket); err != nil {
				return err
			}
			if err := sessions.Put(r.bucket, []byte(sessionID)); err != nil {
				return err
			}
		}
		_, err = tx.CreateBucketIfNotExists(r.bucket)
		return err
	})
}

func resetBucket(tx *bolt.Tx, name []byte) error {
	if tx.Bucket(name) != nil {
		if err := tx.DeleteBucket(name); err != nil {
			return err
		}
	}
	_, err := tx.CreateBucket(name)
	return err
}

func (r *BoltRegistry) Close() error {
	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}

// GetString distinguishes an empty value from a missing name by seeking the
// exact key.
func (r *BoltRegistry) GetString(name string) (string, bool) {
	if r.db == nil {
		return "", false
	}

	var value string
	var found bool
	r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b == nil {
			return nil
		}
		k, v := b.Cursor().Seek([]byte(name))
		if k != nil && bytes.Equal(k, []byte(name)) {
			value = string(v)
			found = true
		}
		return nil
	})
	return value, found
}

func (r *BoltRegistry) SetString(name, value string) error {
	if r.db == nil {
		return domain.ErrRegistryClosed
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(r.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(name), []byte(value))
	})
}

func (r *BoltRegistry) ClearString(name string) error {
	if r.db == nil {
		return domain.ErrRegistryClosed
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	})
}

// Names returns every stored name, sorted.
func (r *BoltRegistry) Names() []string {
	if r.db == nil {
		return nil
	}

	var names []string
	r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names
}

// Reset drops every value in the namespace while keeping the session.
func (r *BoltRegistry) Reset() error {
	if r.db == nil {
		return domain.ErrRegistryClosed
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return resetBucket(tx, r.bucket)
	})
}
