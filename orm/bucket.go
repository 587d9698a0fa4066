/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* It has a primary index (the record key); escrow records are
  content-addressed so no sequences or secondary indexes are needed here.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Model is anything the bucket can persist. Each bucket holds exactly one
// model type; loading decodes into a fresh instance produced by the
// constructor given to NewBucket.
type Model interface {
	tradelock.Persistent
	Validate() error
}

// Bucket is a generic holder that stores one type of data under a common
// key prefix.
//
// This is a generic building block that should generally be embedded in a
// type-safe wrapper to ensure all data is the same type.
type Bucket struct {
	name   string
	prefix []byte
	proto  func() Model
}

// NewBucket creates a bucket to store data. The proto constructor returns
// an empty model to decode stored bytes into.
func NewBucket(name string, proto func() Model) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}

	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  proto,
	}
}

// Name returns the name of the bucket
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Get loads the model stored under the key. Returns (nil, nil) when there
// is no data stored under this key; absence is a valid, inspectable state.
func (b Bucket) Get(db tradelock.ReadOnlyKVStore, key []byte) (Model, error) {
	bz, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}

	obj := b.proto()
	if err := obj.Unmarshal(bz); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s", b.name)
	}
	return obj, nil
}

// Has checks for existence of the key without decoding the value.
func (b Bucket) Has(db tradelock.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Save validates the model and writes it under the key.
func (b Bucket) Save(db tradelock.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrapf(err, "invalid %s", b.name)
	}
	bz, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal %s", b.name)
	}
	return db.Set(b.DBKey(key), bz)
}

// Delete removes the key from the bucket. Deleting an absent key is a noop.
func (b Bucket) Delete(db tradelock.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}
