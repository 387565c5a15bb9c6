// Package store persists command records in an embedded bbolt database.
// Records live in one bucket keyed "lang:name" with JSON values; a second
// bucket holds data-set metadata. All multi-record operations run inside a
// single transaction so readers never observe a partially applied batch.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mankihq/manki/internal/record"
	apperr "github.com/mankihq/manki/pkg/errors"
	"github.com/mankihq/manki/pkg/logger"
)

var (
	bucketCommands = []byte("commands")
	bucketMeta     = []byte("metadata")
	keyMeta        = []byte("meta")
)

// Store wraps a bbolt database holding command records.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the database at path and ensures the
// required buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", apperr.ErrIndexIO, path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketCommands); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init buckets: %v", apperr.ErrIndexIO, err)
	}
	return &Store{
		db:     db,
		logger: logger.WithComponent("store"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces one record.
func (s *Store) Put(cmd *record.Command) error {
	return s.PutBatch([]*record.Command{cmd})
}

// PutBatch writes records in one transaction. The batch is all-or-nothing.
func (s *Store) PutBatch(cmds []*record.Command) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCommands)
		for _, cmd := range cmds {
			data, err := json.Marshal(cmd)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", cmd.Key(), err)
			}
			if err := b.Put([]byte(cmd.Key()), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: put batch: %v", apperr.ErrIndexIO, err)
	}
	s.logger.Debug("records written", "count", len(cmds))
	return nil
}

// Get returns the record stored under (name, lang), or ErrNotFound.
func (s *Store) Get(name, lang string) (*record.Command, error) {
	var cmd record.Command
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCommands).Get([]byte(record.Key(name, lang)))
		if data == nil {
			return apperr.ErrNotFound
		}
		return json.Unmarshal(data, &cmd)
	})
	if err != nil {
		return nil, err
	}
	return &cmd, nil
}

// Delete removes the record under (name, lang). Deleting a missing key
// returns ErrNotFound so callers can report it.
func (s *Store) Delete(name, lang string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCommands)
		key := []byte(record.Key(name, lang))
		if b.Get(key) == nil {
			return apperr.ErrNotFound
		}
		return b.Delete(key)
	})
}

// List returns all records, ordered by key.
func (s *Store) List() ([]*record.Command, error) {
	return s.scan(nil)
}

// ListLang returns all records whose language matches lang, ordered by key.
func (s *Store) ListLang(lang string) ([]*record.Command, error) {
	return s.scan([]byte(lang + ":"))
}

func (s *Store) scan(prefix []byte) ([]*record.Command, error) {
	var cmds []*record.Command
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketCommands).Cursor()
		var k, v []byte
		if prefix == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(prefix)
		}
		for ; k != nil; k, v = c.Next() {
			if prefix != nil && !bytes.HasPrefix(k, prefix) {
				break
			}
			var cmd record.Command
			if err := json.Unmarshal(v, &cmd); err != nil {
				return fmt.Errorf("unmarshal %s: %w", k, err)
			}
			cmds = append(cmds, &cmd)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %v", apperr.ErrIndexIO, err)
	}
	return cmds, nil
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketCommands).Stats().KeyN
		return nil
	})
	return n, err
}

// Metadata returns the stored data-set metadata, refreshed with the live
// record count and language list.
func (s *Store) Metadata() (*record.Metadata, error) {
	meta := &record.Metadata{}
	err := s.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(bucketMeta).Get(keyMeta); data != nil {
			if err := json.Unmarshal(data, meta); err != nil {
				return err
			}
		}
		langs := map[string]struct{}{}
		c := tx.Bucket(bucketCommands).Cursor()
		n := 0
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			n++
			if i := bytes.IndexByte(k, ':'); i > 0 {
				langs[string(k[:i])] = struct{}{}
			}
		}
		meta.CommandCount = n
		meta.Languages = meta.Languages[:0]
		for l := range langs {
			meta.Languages = append(meta.Languages, l)
		}
		sort.Strings(meta.Languages)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", apperr.ErrIndexIO, err)
	}
	return meta, nil
}

// SetMetadata persists version and update-time metadata.
func (s *Store) SetMetadata(meta *record.Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyMeta, data)
	})
}

// Reset removes every record and the stored metadata.
func (s *Store) Reset() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketCommands); err != nil {
			return err
		}
		if err := tx.DeleteBucket(bucketMeta); err != nil {
			return err
		}
		if _, err := tx.CreateBucket(bucketCommands); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketMeta)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: reset: %v", apperr.ErrIndexIO, err)
	}
	s.logger.Info("store reset")
	return nil
}
