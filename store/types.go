//nolint
package store

import "github.com/iov-one/tradelock"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = tradelock.ReadOnlyKVStore
type KVStore = tradelock.KVStore
type SetDeleter = tradelock.SetDeleter
type Batch = tradelock.Batch
type CacheableKVStore = tradelock.CacheableKVStore
type KVCacheWrap = tradelock.KVCacheWrap
