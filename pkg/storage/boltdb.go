package storage

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cuemby/warren/pkg/codec"
	"github.com/cuemby/warren/pkg/jarierr"
	bolt "go.etcd.io/bbolt"
)

// buckets is every named sub-store Jari persists.
var buckets = [][]byte{
	[]byte(codec.BucketTodos),
	[]byte(codec.BucketHistory),
	[]byte(codec.BucketPending),
	[]byte(codec.BucketMeta),
}

// openRetries/openBackoffMin bound the wait for a contended write lock
// on database open (bounded retry with small exponential
// backoff capped by an implementation-chosen ceiling").
const (
	openRetries    = 5
	openBackoffMin = 50 * time.Millisecond
)

// BoltStore implements Store using go.etcd.io/bbolt as the embedded
// memory-mapped key-value engine, following the bucket-provisioning
// pattern of cuemby/warren's pkg/storage/boltdb.go generalized to
// Jari's four sub-stores.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (creating if absent) the Jari database at dbDir/jari.db.
func Open(dbDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dbDir, "jari.db")

	var db *bolt.DB
	var err error
	backoff := openBackoffMin
	for attempt := 0; attempt <= openRetries; attempt++ {
		db, err = bolt.Open(dbPath, 0600, &bolt.Options{Timeout: backoff})
		if err == nil {
			break
		}
		if !errors.Is(err, bolt.ErrTimeout) || attempt == openRetries {
			return nil, classifyOpenError(err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, classifyOpenError(err)
	}

	return &BoltStore{db: db}, nil
}

func classifyOpenError(err error) error {
	if errors.Is(err, bolt.ErrInvalid) || errors.Is(err, bolt.ErrChecksum) || errors.Is(err, bolt.ErrVersionMismatch) {
		return &jarierr.StorageCorruptError{Err: err}
	}
	if errors.Is(err, syscall.ENOSPC) {
		return &jarierr.StorageFullError{Err: err}
	}
	return err
}

// Close closes the database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Begin opens a bolt transaction, translating bolt's own failure modes
// into Jari's StorageFull/StorageCorrupt fatal error kinds.
func (s *BoltStore) Begin(write bool) (Txn, error) {
	tx, err := s.db.Begin(write)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseNotOpen) {
			return nil, &jarierr.StorageCorruptError{Err: err}
		}
		return nil, err
	}
	return &boltTxn{tx: tx}, nil
}

type boltTxn struct {
	tx *bolt.Tx
}

func (t *boltTxn) bucket(sub []byte) (*bolt.Bucket, error) {
	b := t.tx.Bucket(sub)
	if b == nil {
		return nil, fmt.Errorf("unknown sub-store %q", sub)
	}
	return b, nil
}

func (t *boltTxn) Get(sub, key []byte) ([]byte, error) {
	b, err := t.bucket(sub)
	if err != nil {
		return nil, err
	}
	v := b.Get(key)
	if v == nil {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (t *boltTxn) Put(sub, key, value []byte) error {
	b, err := t.bucket(sub)
	if err != nil {
		return err
	}
	if err := b.Put(key, value); err != nil {
		return classifyIOError(err)
	}
	return nil
}

func (t *boltTxn) Delete(sub, key []byte) error {
	b, err := t.bucket(sub)
	if err != nil {
		return err
	}
	if err := b.Delete(key); err != nil {
		return classifyIOError(err)
	}
	return nil
}

func (t *boltTxn) Range(sub, prefix []byte, fn func(key, value []byte) (bool, error)) error {
	b, err := t.bucket(sub)
	if err != nil {
		return err
	}
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		cont, err := fn(k, v)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return nil
}

func (t *boltTxn) Commit() error {
	if !t.tx.Writable() {
		return t.Rollback()
	}
	if err := t.tx.Commit(); err != nil {
		return classifyIOError(err)
	}
	return nil
}

func (t *boltTxn) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && errors.Is(err, bolt.ErrTxClosed) {
		return nil
	}
	return err
}

// classifyIOError maps bbolt's commit/write failures onto Jari's two
// fatal storage kinds: out-of-space mmap growth is StorageFull (the
// transaction aborts as a whole); anything else unexpected
// from the storage engine itself is StorageCorrupt. Domain-level bolt
// errors (ErrTxNotWritable, ErrBucketNotFound, ErrKeyRequired, ...)
// are programmer errors in this codebase and are returned verbatim so
// they fail loudly in tests instead of being misreported as storage
// corruption.
func classifyIOError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ENOSPC) {
		return &jarierr.StorageFullError{Err: err}
	}
	switch {
	case errors.Is(err, bolt.ErrTxNotWritable),
		errors.Is(err, bolt.ErrTxClosed),
		errors.Is(err, bolt.ErrBucketNotFound),
		errors.Is(err, bolt.ErrKeyRequired),
		errors.Is(err, bolt.ErrKeyTooLarge),
		errors.Is(err, bolt.ErrValueTooLarge),
		errors.Is(err, bolt.ErrIncompatibleValue):
		return err
	}
	return &jarierr.StorageCorruptError{Err: err}
}
