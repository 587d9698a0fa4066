package store

import (
	"os"
	"path/filepath"

	"github.com/iov-one/tradelock/errors"
	bolt "go.etcd.io/bbolt"
)

// records is the single bucket all key/value pairs live in. Key prefixes
// are applied one level up, by the orm buckets.
var boltBucketName = []byte("records")

// BoltStore is a CacheableKVStore persisted in a bbolt file. It is meant
// for a single process owning the file; bbolt itself enforces that with a
// file lock.
//
// Individual Set/Delete calls run in their own write transaction. For the
// all-or-nothing semantics of an escrow operation use CacheWrap: the cache
// collects all writes and flushes them in one bolt transaction on Write.
type BoltStore struct {
	db *bolt.DB
}

var _ CacheableKVStore = (*BoltStore)(nil)

// OpenBoltStore creates or opens a bbolt backed store at the given path,
// creating parent directories as needed.
func OpenBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		return nil, errors.Wrap(errors.ErrInput, "path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "open bolt file")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create bucket")
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying file lock. The store must not be used
// afterwards.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Get loads the value stored under the key, nil if the key is unknown.
func (s *BoltStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(boltBucketName).Get(key); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return value, nil
}

// Has checks for existence of the key.
func (s *BoltStore) Has(key []byte) (bool, error) {
	var has bool
	err := s.db.View(func(tx *bolt.Tx) error {
		has = tx.Bucket(boltBucketName).Get(key) != nil
		return nil
	})
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return has, nil
}

// Set writes the key in its own bolt transaction.
func (s *BoltStore) Set(key, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucketName).Put(key, value)
	})
	return errors.Wrap(err, "bolt set")
}

// Delete removes the key in its own bolt transaction.
func (s *BoltStore) Delete(key []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucketName).Delete(key)
	})
	return errors.Wrap(err, "bolt delete")
}

// NewBatch returns a batch whose Write flushes all collected operations in
// a single bolt transaction.
func (s *BoltStore) NewBatch() Batch {
	return &boltBatch{db: s.db}
}

// CacheWrap scratch-pads all writes in memory until Write is called.
func (s *BoltStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(s, s.NewBatch(), nil)
}

// boltBatch piles up ops and executes them in one bolt transaction. Unlike
// NonAtomicBatch this is safe for persistent stores: either every op lands
// or none does.
type boltBatch struct {
	db  *bolt.DB
	ops []Op
}

var _ Batch = (*boltBatch)(nil)

func (b *boltBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

func (b *boltBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

func (b *boltBatch) Write() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucketName)
		for _, op := range b.ops {
			if err := op.Apply(boltWriter{bucket}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	b.ops = nil
	return nil
}

// boltWriter adapts a bolt bucket to the SetDeleter interface so that Ops
// can apply themselves to it.
type boltWriter struct {
	bucket *bolt.Bucket
}

func (w boltWriter) Set(key, value []byte) error {
	return w.bucket.Put(key, value)
}

func (w boltWriter) Delete(key []byte) error {
	return w.bucket.Delete(key)
}
