// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kvstore

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/posledger/kv"
	"github.com/vechain/posledger/pos"
	"github.com/vechain/posledger/stackedmap"
)

// Batch stages writes on top of a Store. Reads see the staged writes, and
// nothing reaches the kv store until Commit. A Batch is not safe for
// concurrent use.
type Batch struct {
	accessor
	s  *Store
	sm *stackedmap.StackedMap[string, []byte]
}

var _ pos.StorageWrite = (*Batch)(nil)

// NewBatch creates an empty batch.
func (s *Store) NewBatch() *Batch {
	b := &Batch{s: s}
	b.accessor = accessor{&batchRW{b}}
	b.reset()
	return b
}

func (b *Batch) reset() {
	b.sm = stackedmap.New(func(key string) ([]byte, bool, error) {
		val, err := b.s.accessor.rw.get([]byte(key))
		return val, val != nil, err
	})
}

// Checkpoint returns a revision that Revert can roll back to.
func (b *Batch) Checkpoint() int {
	return b.sm.Push()
}

// Revert discards the writes staged since the given checkpoint.
func (b *Batch) Revert(checkpoint int) {
	if checkpoint < 1 {
		checkpoint = 1
	}
	b.sm.PopTo(checkpoint)
}

// Discard drops every staged write.
func (b *Batch) Discard() {
	b.reset()
}

// Len returns the number of distinct keys staged.
func (b *Batch) Len() int {
	return len(b.staged())
}

// staged returns the final value of each staged key, nil for deletion.
func (b *Batch) staged() map[string][]byte {
	m := make(map[string][]byte)
	b.sm.Journal(func(key string, val []byte) bool {
		m[key] = val
		return true
	})
	return m
}

// Commit writes the staged changes atomically and empties the batch.
func (b *Batch) Commit() error {
	start := time.Now()
	staged := b.staged()
	keys := make([]string, 0, len(staged))
	for k := range staged {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if err := b.s.store.Batch(func(w kv.PutFlusher) error {
		for _, k := range keys {
			if val := staged[k]; val == nil {
				if err := w.Delete([]byte(k)); err != nil {
					return err
				}
			} else if err := w.Put([]byte(k), val); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return errors.Wrap(err, "commit batch")
	}

	for _, k := range keys {
		b.s.cache.Add(k, staged[k])
	}
	b.reset()

	logger.Debug("committed batch", "keys", len(keys), "elapsed", time.Since(start))
	metricsHandleCommit(len(keys), start)
	return nil
}

type batchRW struct {
	b *Batch
}

func (r *batchRW) get(key []byte) ([]byte, error) {
	val, _, err := r.b.sm.Get(string(key))
	return val, err
}

func (r *batchRW) put(key, val []byte) error {
	r.b.sm.Put(string(key), append([]byte(nil), val...))
	return nil
}

func (r *batchRW) del(key []byte) error {
	r.b.sm.Put(string(key), nil)
	return nil
}

// iterate merges the staged writes under prefix into the stored ones.
func (r *batchRW) iterate(prefix []byte, fn func(key, val []byte)) error {
	merged := make(map[string][]byte)
	if err := r.b.s.accessor.rw.iterate(prefix, func(key, val []byte) {
		merged[string(key)] = val
	}); err != nil {
		return err
	}
	for k, v := range r.b.staged() {
		if strings.HasPrefix(k, string(prefix)) {
			merged[k] = v
		}
	}

	keys := make([][]byte, 0, len(merged))
	for k, v := range merged {
		if v != nil {
			keys = append(keys, []byte(k))
		}
	}
	slices.SortFunc(keys, bytes.Compare)
	for _, k := range keys {
		fn(k, merged[string(k)])
	}
	return nil
}

// PutRaw stages an arbitrary key outside the ledger buckets, so auxiliary
// records commit together with the ledger changes.
func (b *Batch) PutRaw(key, val []byte) error {
	return b.rw.put(key, val)
}

// DeleteRaw stages the deletion of a key written by PutRaw.
func (b *Batch) DeleteRaw(key []byte) error {
	return b.rw.del(key)
}
