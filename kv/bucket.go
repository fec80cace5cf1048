// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

// Key returns the full key of key in the bucket.
func (b Bucket) Key(key []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(key)), b...), key...)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) {
			buf := b.prefixed(key)
			defer bufPool.Put(buf)
			return src.Get(buf.k)
		},
		func(key []byte) (bool, error) {
			buf := b.prefixed(key)
			defer bufPool.Put(buf)
			return src.Has(buf.k)
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			buf := b.prefixed(key)
			defer bufPool.Put(buf)
			return src.Put(buf.k, val)
		},
		func(key []byte) error {
			buf := b.prefixed(key)
			defer bufPool.Put(buf)
			return src.Delete(buf.k)
		},
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		SnapshotFunc
		BatchFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func(fn func(Getter) error) error {
			return src.Snapshot(func(getter Getter) error {
				return fn(b.NewGetter(getter))
			})
		},
		func(fn func(PutFlusher) error) error {
			return src.Batch(func(putter PutFlusher) error {
				return fn(&struct {
					Putter
					FlushFunc
				}{
					b.NewPutter(putter),
					putter.Flush,
				})
			})
		},
		func(r Range, fn func(Pair) bool) error {
			return src.Iterate(b.Range(r), func(pair Pair) bool {
				return fn(&struct {
					KeyFunc
					ValueFunc
				}{
					// strip the bucket
					func() []byte { return pair.Key()[len(b):] },
					pair.Value,
				})
			})
		},
	}
}

// Range converts a range inside the bucket to the range of the source store.
// An empty limit means the end of the bucket.
func (b Bucket) Range(r Range) Range {
	out := Range{Start: b.Key(r.Start)}
	if len(r.Limit) == 0 {
		out.Limit = util.BytesPrefix([]byte(b)).Limit
	} else {
		out.Limit = b.Key(r.Limit)
	}
	return out
}

func (b Bucket) prefixed(key []byte) *buf {
	buf := bufPool.Get().(*buf)
	buf.k = append(append(buf.k[:0], b...), key...)
	return buf
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
