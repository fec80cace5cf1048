// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter defines methods to read kv.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// PutFlusher defines putter with Flush method.
type PutFlusher interface {
	Putter
	// Flush writes out what has been put so far. Once flushed, the batch is no
	// longer atomic as a whole.
	Flush() error
}

// Pair defines key-value pair.
type Pair interface {
	Key() []byte
	Value() []byte
}

// Range is the key range.
type Range struct {
	Start []byte // start of key range (included)
	Limit []byte // limit of key range (excluded)
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter

	// Snapshot calls fn with a consistent read view of the store.
	Snapshot(fn func(Getter) error) error
	// Batch calls fn with a putter whose writes are applied atomically
	// when fn returns nil, and discarded otherwise.
	Batch(fn func(PutFlusher) error) error
	// Iterate calls fn for each pair in r in ascending key order, until fn
	// returns false.
	Iterate(r Range, fn func(Pair) bool) error
}

// StoreCloser is a Store that holds resources.
type StoreCloser interface {
	Store
	Close() error
}

// Func adapters let a struct of closures satisfy the interfaces above, the
// way Bucket wraps a source store.
type (
	GetFunc        func(key []byte) ([]byte, error)
	HasFunc        func(key []byte) (bool, error)
	IsNotFoundFunc func(err error) bool
	PutFunc        func(key, val []byte) error
	DeleteFunc     func(key []byte) error
	FlushFunc      func() error
	SnapshotFunc   func(fn func(Getter) error) error
	BatchFunc      func(fn func(PutFlusher) error) error
	IterateFunc    func(r Range, fn func(Pair) bool) error
	KeyFunc        func() []byte
	ValueFunc      func() []byte
)

func (f GetFunc) Get(key []byte) ([]byte, error)                { return f(key) }
func (f HasFunc) Has(key []byte) (bool, error)                  { return f(key) }
func (f IsNotFoundFunc) IsNotFound(err error) bool              { return f(err) }
func (f PutFunc) Put(key, val []byte) error                     { return f(key, val) }
func (f DeleteFunc) Delete(key []byte) error                    { return f(key) }
func (f FlushFunc) Flush() error                                { return f() }
func (f SnapshotFunc) Snapshot(fn func(Getter) error) error     { return f(fn) }
func (f BatchFunc) Batch(fn func(PutFlusher) error) error       { return f(fn) }
func (f IterateFunc) Iterate(r Range, fn func(Pair) bool) error { return f(r, fn) }
func (f KeyFunc) Key() []byte                                   { return f() }
func (f ValueFunc) Value() []byte                               { return f() }
