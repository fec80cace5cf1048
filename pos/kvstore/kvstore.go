// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kvstore implements accounting storage on a kv.Store.
//
// Records live in one bucket per collection, keyed by the raw id bytes (pool
// id followed by delegation id for shares), with RLP encoded values.
package kvstore

import (
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/posledger/amount"
	"github.com/vechain/posledger/cache"
	"github.com/vechain/posledger/kv"
	"github.com/vechain/posledger/pos"
)

const (
	poolDataBucket          = kv.Bucket("pd/")
	poolBalanceBucket       = kv.Bucket("pb/")
	shareBucket             = kv.Bucket("ps/")
	delegationBalanceBucket = kv.Bucket("db/")
	delegationDataBucket    = kv.Bucket("dd/")
)

// DefaultCacheSize is the number of raw records cached when Options leaves it unset.
const DefaultCacheSize = 4096

// Options options for creating a Store.
type Options struct {
	CacheSize int
}

// rawRW is the byte level access the typed accessors are built on.
// A nil value means absent.
type rawRW interface {
	get(key []byte) ([]byte, error)
	put(key, val []byte) error
	del(key []byte) error
	// iterate visits the keys starting with prefix, in ascending order.
	iterate(prefix []byte, fn func(key, val []byte)) error
}

// Store is a pos.StorageWrite persisted in a kv.Store. Writes made directly
// on the Store are applied immediately, use NewBatch for atomic updates.
type Store struct {
	accessor
	store kv.Store
	cache *cache.LRU

	lastLogTime atomic.Int64
}

var _ pos.StorageWrite = (*Store)(nil)

// New creates a Store over the given kv store.
func New(store kv.Store, opts Options) (*Store, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := cache.NewLRU(size)
	if err != nil {
		return nil, errors.Wrap(err, "create cache")
	}
	s := &Store{store: store, cache: c}
	s.accessor = accessor{&storeRW{s}}
	s.lastLogTime.Store(time.Now().UnixNano())
	return s, nil
}

// KV returns the underlying kv store.
func (s *Store) KV() kv.Store {
	return s.store
}

type storeRW struct {
	s *Store
}

func (r *storeRW) get(key []byte) ([]byte, error) {
	v, err := r.s.cache.GetOrLoad(string(key), func(any) (any, error) {
		val, err := r.s.store.Get(key)
		if err != nil {
			if r.s.store.IsNotFound(err) {
				return []byte(nil), nil
			}
			return nil, err
		}
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	r.s.logCacheStats()
	return v.([]byte), nil
}

func (r *storeRW) put(key, val []byte) error {
	if err := r.s.store.Put(key, val); err != nil {
		return err
	}
	r.s.cache.Add(string(key), append([]byte(nil), val...))
	return nil
}

func (r *storeRW) del(key []byte) error {
	if err := r.s.store.Delete(key); err != nil {
		return err
	}
	r.s.cache.Add(string(key), []byte(nil))
	return nil
}

func (r *storeRW) iterate(prefix []byte, fn func(key, val []byte)) error {
	return r.s.store.Iterate(kv.Bucket(prefix).Range(kv.Range{}), func(pair kv.Pair) bool {
		fn(append([]byte(nil), pair.Key()...), append([]byte(nil), pair.Value()...))
		return true
	})
}

// accessor implements the typed storage methods over raw bytes.
type accessor struct {
	rw rawRW
}

// GetRaw returns the value stored under key, nil if absent.
func (a accessor) GetRaw(key []byte) ([]byte, error) {
	val, err := a.rw.get(key)
	return val, errors.Wrapf(err, "get %x", key)
}

// IterateRaw visits the keys starting with prefix in ascending order.
func (a accessor) IterateRaw(prefix []byte, fn func(key, val []byte)) error {
	return errors.Wrapf(a.rw.iterate(prefix, fn), "iterate %x", prefix)
}

func shareKey(id pos.PoolID, delegation pos.DelegationID) []byte {
	return shareBucket.Key(append(id.Bytes(), delegation.Bytes()...))
}

func getRecord[T any](rw rawRW, key []byte) (*T, error) {
	val, err := rw.get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "get %x", key)
	}
	if val == nil {
		return nil, nil
	}
	var v T
	if err := rlp.DecodeBytes(val, &v); err != nil {
		return nil, errors.Wrapf(err, "decode %x", key)
	}
	return &v, nil
}

func putRecord(rw rawRW, key []byte, v any) error {
	val, err := rlp.EncodeToBytes(v)
	if err != nil {
		return errors.Wrapf(err, "encode %x", key)
	}
	return errors.Wrapf(rw.put(key, val), "put %x", key)
}

func getAmount(rw rawRW, key []byte) (amount.Amount, bool, error) {
	v, err := getRecord[amount.Amount](rw, key)
	if err != nil || v == nil {
		return amount.Amount{}, false, err
	}
	return *v, true, nil
}

// putAmount writes a balance, deleting the key when it is zero.
func putAmount(rw rawRW, key []byte, v amount.Amount) error {
	if v.IsZero() {
		return deleteKey(rw, key)
	}
	return putRecord(rw, key, v)
}

func deleteKey(rw rawRW, key []byte) error {
	return errors.Wrapf(rw.del(key), "delete %x", key)
}

func (a accessor) GetPoolData(id pos.PoolID) (*pos.PoolData, error) {
	return getRecord[pos.PoolData](a.rw, poolDataBucket.Key(id.Bytes()))
}

func (a accessor) GetPoolBalance(id pos.PoolID) (amount.Amount, bool, error) {
	return getAmount(a.rw, poolBalanceBucket.Key(id.Bytes()))
}

func (a accessor) GetPoolDelegationShares(id pos.PoolID) (pos.DelegationShares, error) {
	prefix := shareBucket.Key(id.Bytes())

	var (
		shares pos.DelegationShares
		outErr error
	)
	err := a.rw.iterate(prefix, func(key, val []byte) {
		if outErr != nil {
			return
		}
		var v amount.Amount
		if err := rlp.DecodeBytes(val, &v); err != nil {
			outErr = errors.Wrapf(err, "decode %x", key)
			return
		}
		shares = append(shares, pos.DelegationShare{
			Delegation: pos.BytesToDelegationID(key[len(prefix):]),
			Amount:     v,
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "iterate shares of %v", id)
	}
	if outErr != nil {
		return nil, outErr
	}
	return shares, nil
}

func (a accessor) GetPoolDelegationShare(id pos.PoolID, delegation pos.DelegationID) (amount.Amount, bool, error) {
	return getAmount(a.rw, shareKey(id, delegation))
}

func (a accessor) GetDelegationData(id pos.DelegationID) (*pos.DelegationData, error) {
	return getRecord[pos.DelegationData](a.rw, delegationDataBucket.Key(id.Bytes()))
}

func (a accessor) GetDelegationBalance(id pos.DelegationID) (amount.Amount, bool, error) {
	return getAmount(a.rw, delegationBalanceBucket.Key(id.Bytes()))
}

func (a accessor) SetPoolData(id pos.PoolID, data pos.PoolData) error {
	return putRecord(a.rw, poolDataBucket.Key(id.Bytes()), &data)
}

func (a accessor) DeletePoolData(id pos.PoolID) error {
	return deleteKey(a.rw, poolDataBucket.Key(id.Bytes()))
}

func (a accessor) SetPoolBalance(id pos.PoolID, balance amount.Amount) error {
	return putAmount(a.rw, poolBalanceBucket.Key(id.Bytes()), balance)
}

func (a accessor) DeletePoolBalance(id pos.PoolID) error {
	return deleteKey(a.rw, poolBalanceBucket.Key(id.Bytes()))
}

func (a accessor) SetPoolDelegationShare(id pos.PoolID, delegation pos.DelegationID, share amount.Amount) error {
	return putAmount(a.rw, shareKey(id, delegation), share)
}

func (a accessor) DeletePoolDelegationShare(id pos.PoolID, delegation pos.DelegationID) error {
	return deleteKey(a.rw, shareKey(id, delegation))
}

func (a accessor) SetDelegationBalance(id pos.DelegationID, balance amount.Amount) error {
	return putAmount(a.rw, delegationBalanceBucket.Key(id.Bytes()), balance)
}

func (a accessor) DeleteDelegationBalance(id pos.DelegationID) error {
	return deleteKey(a.rw, delegationBalanceBucket.Key(id.Bytes()))
}

func (a accessor) SetDelegationData(id pos.DelegationID, data pos.DelegationData) error {
	return putRecord(a.rw, delegationDataBucket.Key(id.Bytes()), &data)
}

func (a accessor) DeleteDelegationData(id pos.DelegationID) error {
	return deleteKey(a.rw, delegationDataBucket.Key(id.Bytes()))
}
