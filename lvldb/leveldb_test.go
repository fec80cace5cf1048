// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/posledger/kv"
)

func newTestDBs(t *testing.T) []*LevelDB {
	disk, err := New(t.TempDir(), Options{16, 16})
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	mem, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	return []*LevelDB{disk, mem}
}

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	for _, leveldb := range newTestDBs(t) {
		err := leveldb.Put(key, value)
		assert.Nil(t, err)

		ret1, err := leveldb.Get(key)
		assert.Nil(t, err)

		ret2, err := leveldb.Has(key)
		assert.Nil(t, err)

		ret3, err := leveldb.Has(inValidKey)
		assert.Nil(t, err)

		err = leveldb.Delete(key)
		assert.Nil(t, err)

		_, ret4 := leveldb.Get(key)

		tests := []struct {
			ret      any
			expected any
		}{
			{ret1, value},
			{ret2, true},
			{ret3, false},
			{leveldb.IsNotFound(ret4), true},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.expected, tt.ret)
		}
	}
}

func TestLevelDBBatch(t *testing.T) {
	var (
		key   = []byte("123")
		value = []byte("456")
	)

	for _, leveldb := range newTestDBs(t) {
		err := leveldb.Batch(func(w kv.PutFlusher) error {
			if err := w.Put(key, value); err != nil {
				return err
			}
			// nothing visible until the batch is written
			has, err := leveldb.Has(key)
			assert.Nil(t, err)
			assert.False(t, has)
			return w.Flush()
		})
		assert.Nil(t, err)

		ret, err := leveldb.Get(key)
		assert.Nil(t, err)
		assert.Equal(t, value, ret)

		// a failed batch writes nothing that was not flushed
		boom := errors.New("boom")
		err = leveldb.Batch(func(w kv.PutFlusher) error {
			if err := w.Delete(key); err != nil {
				return err
			}
			return boom
		})
		assert.Equal(t, boom, err)

		has, err := leveldb.Has(key)
		assert.Nil(t, err)
		assert.True(t, has)
	}
}

func TestLevelDBSnapshot(t *testing.T) {
	for _, leveldb := range newTestDBs(t) {
		require.NoError(t, leveldb.Put([]byte("k"), []byte("v1")))

		err := leveldb.Snapshot(func(g kv.Getter) error {
			require.NoError(t, leveldb.Put([]byte("k"), []byte("v2")))

			v, err := g.Get([]byte("k"))
			assert.Nil(t, err)
			assert.Equal(t, []byte("v1"), v)

			_, err = g.Get([]byte("missing"))
			assert.True(t, g.IsNotFound(err))
			return nil
		})
		assert.Nil(t, err)

		v, err := leveldb.Get([]byte("k"))
		assert.Nil(t, err)
		assert.Equal(t, []byte("v2"), v)
	}
}

func TestLevelDBIterate(t *testing.T) {
	for _, leveldb := range newTestDBs(t) {
		for _, k := range []string{"a1", "b1", "b2", "b3", "c1"} {
			require.NoError(t, leveldb.Put([]byte(k), []byte("v"+k)))
		}

		var keys []string
		err := leveldb.Iterate(kv.Range{Start: []byte("b"), Limit: []byte("c")}, func(pair kv.Pair) bool {
			keys = append(keys, string(pair.Key()))
			assert.Equal(t, "v"+string(pair.Key()), string(pair.Value()))
			return true
		})
		assert.Nil(t, err)
		assert.Equal(t, []string{"b1", "b2", "b3"}, keys)

		keys = nil
		err = leveldb.Iterate(kv.Range{}, func(pair kv.Pair) bool {
			keys = append(keys, string(pair.Key()))
			return len(keys) < 2
		})
		assert.Nil(t, err)
		assert.Equal(t, []string{"a1", "b1"}, keys)
	}
}

func TestLevelDBReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := New(dir, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))

	// the directory stays locked while open
	_, err = New(dir, Options{})
	assert.Error(t, err)

	require.NoError(t, db.Close())

	db, err = New(dir, Options{})
	require.NoError(t, err)
	defer db.Close()

	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
