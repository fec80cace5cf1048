// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos_test

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/posledger/accounting"
	"github.com/vechain/posledger/amount"
	"github.com/vechain/posledger/pos"
	"github.com/vechain/posledger/pos/memstore"
)

func poolID(n byte) pos.PoolID             { return pos.BytesToPoolID([]byte{n}) }
func delegationID(n byte) pos.DelegationID { return pos.BytesToDelegationID([]byte{n}) }

func share(p, d byte) pos.PoolDelegationKey {
	return pos.PoolDelegationKey{Pool: poolID(p), Delegation: delegationID(d)}
}

func newPublicKey(t testing.TB) pos.PublicKey {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return pos.NewPublicKey(key.PubKey())
}

func poolData(key pos.PublicKey, pledge uint64) *pos.PoolData {
	return accounting.Some(pos.NewPoolData(key, amount.FromAtoms(pledge)))
}

func delegationData(pool pos.PoolID, owner pos.PublicKey) *pos.DelegationData {
	return accounting.Some(pos.NewDelegationData(pool, owner))
}

func signed(atoms int64) amount.SignedAmount { return amount.SignedFromAtoms(atoms) }

func newDeltaData(
	pools map[pos.PoolID]pos.PoolDataDelta,
	poolBalances map[pos.PoolID]amount.SignedAmount,
	shares map[pos.PoolDelegationKey]amount.SignedAmount,
	delegationBalances map[pos.DelegationID]amount.SignedAmount,
	delegations map[pos.DelegationID]pos.DelegationDataDelta,
) *pos.DeltaData {
	return &pos.DeltaData{
		PoolData:             accounting.DeltaDataCollectionFrom(pools),
		PoolBalances:         accounting.DeltaAmountCollectionFrom(poolBalances),
		PoolDelegationShares: accounting.DeltaAmountCollectionFrom(shares),
		DelegationBalances:   accounting.DeltaAmountCollectionFrom(delegationBalances),
		DelegationData:       accounting.DeltaDataCollectionFrom(delegations),
	}
}

func TestMergeDeltasCheckUndoCheck(t *testing.T) {
	key1, key2 := newPublicKey(t), newPublicKey(t)
	db := pos.NewDB(memstore.New())

	data1 := newDeltaData(
		map[pos.PoolID]pos.PoolDataDelta{
			poolID(1): accounting.NewDataDelta(nil, poolData(key1, 100)),
		},
		map[pos.PoolID]amount.SignedAmount{poolID(3): signed(300), poolID(4): signed(400)},
		map[pos.PoolDelegationKey]amount.SignedAmount{share(5, 6): signed(100)},
		map[pos.DelegationID]amount.SignedAmount{delegationID(5): signed(500), delegationID(6): signed(600)},
		map[pos.DelegationID]pos.DelegationDataDelta{
			delegationID(1): accounting.NewDataDelta(nil, delegationData(poolID(1), key1)),
		},
	)
	delta1, err := pos.NewDeltaFromData(db, data1)
	require.NoError(t, err)

	data2 := newDeltaData(
		map[pos.PoolID]pos.PoolDataDelta{
			poolID(1):  accounting.NewDataDelta(poolData(key1, 100), poolData(key1, 300)),
			poolID(10): accounting.NewDataDelta(nil, poolData(key2, 100)),
		},
		map[pos.PoolID]amount.SignedAmount{poolID(3): signed(-300), poolID(4): signed(50)},
		map[pos.PoolDelegationKey]amount.SignedAmount{share(5, 6): signed(50)},
		map[pos.DelegationID]amount.SignedAmount{delegationID(8): signed(200), delegationID(9): signed(300)},
		map[pos.DelegationID]pos.DelegationDataDelta{
			delegationID(1): accounting.NewDataDelta(delegationData(poolID(1), key1), nil),
		},
	)
	delta2, err := pos.NewDeltaFromData(delta1, data2)
	require.NoError(t, err)
	assert.Equal(t, 2, delta2.Depth())

	expectedAfterMerge := newDeltaData(
		map[pos.PoolID]pos.PoolDataDelta{
			poolID(1):  accounting.NewDataDelta(nil, poolData(key1, 300)),
			poolID(10): accounting.NewDataDelta(nil, poolData(key2, 100)),
		},
		map[pos.PoolID]amount.SignedAmount{poolID(4): signed(450)},
		map[pos.PoolDelegationKey]amount.SignedAmount{share(5, 6): signed(150)},
		map[pos.DelegationID]amount.SignedAmount{
			delegationID(5): signed(500),
			delegationID(6): signed(600),
			delegationID(8): signed(200),
			delegationID(9): signed(300),
		},
		map[pos.DelegationID]pos.DelegationDataDelta{
			delegationID(1): accounting.NewDataDelta[pos.DelegationData](nil, nil),
		},
	)

	consumed, err := delta2.Consume()
	require.NoError(t, err)
	undo, err := delta1.MergeWithDelta(consumed)
	require.NoError(t, err)
	assert.Equal(t, expectedAfterMerge, delta1.Data())

	expectedAfterUndo := newDeltaData(
		map[pos.PoolID]pos.PoolDataDelta{
			poolID(1):  accounting.NewDataDelta(nil, poolData(key1, 100)),
			poolID(10): accounting.NewDataDelta[pos.PoolData](nil, nil),
		},
		map[pos.PoolID]amount.SignedAmount{poolID(3): signed(300), poolID(4): signed(400)},
		map[pos.PoolDelegationKey]amount.SignedAmount{share(5, 6): signed(100)},
		map[pos.DelegationID]amount.SignedAmount{delegationID(5): signed(500), delegationID(6): signed(600)},
		map[pos.DelegationID]pos.DelegationDataDelta{
			delegationID(1): accounting.NewDataDelta(nil, delegationData(poolID(1), key1)),
		},
	)

	require.NoError(t, delta1.UndoDeltaMerge(undo))
	assert.Equal(t, expectedAfterUndo, delta1.Data())
}

func TestMergeStoreWithDeltaCheckUndoCheck(t *testing.T) {
	key1, key2 := newPublicKey(t), newPublicKey(t)

	storage := memstore.FromValues(memstore.Values{
		PoolData:     map[pos.PoolID]pos.PoolData{poolID(1): *poolData(key1, 100)},
		PoolBalances: map[pos.PoolID]amount.Amount{poolID(3): amount.FromAtoms(300), poolID(4): amount.FromAtoms(400)},
		Shares:       map[pos.PoolDelegationKey]amount.Amount{share(5, 6): amount.FromAtoms(100)},
		DelegationBalances: map[pos.DelegationID]amount.Amount{
			delegationID(5): amount.FromAtoms(500),
			delegationID(6): amount.FromAtoms(600),
		},
		DelegationData: map[pos.DelegationID]pos.DelegationData{delegationID(1): *delegationData(poolID(1), key1)},
	})
	original := storage.Clone()
	db := pos.NewDB(storage)

	delta, err := pos.NewDeltaFromData(db, newDeltaData(
		map[pos.PoolID]pos.PoolDataDelta{
			poolID(1):  accounting.NewDataDelta(poolData(key1, 100), poolData(key1, 300)),
			poolID(10): accounting.NewDataDelta(nil, poolData(key2, 100)),
		},
		map[pos.PoolID]amount.SignedAmount{poolID(3): signed(-300), poolID(4): signed(50)},
		map[pos.PoolDelegationKey]amount.SignedAmount{share(5, 6): signed(50)},
		map[pos.DelegationID]amount.SignedAmount{delegationID(8): signed(200), delegationID(9): signed(300)},
		map[pos.DelegationID]pos.DelegationDataDelta{
			delegationID(1): accounting.NewDataDelta(delegationData(poolID(1), key1), nil),
		},
	))
	require.NoError(t, err)
	consumed, err := delta.Consume()
	require.NoError(t, err)

	undo, err := db.MergeWithDelta(consumed)
	require.NoError(t, err)

	expected := memstore.FromValues(memstore.Values{
		PoolData: map[pos.PoolID]pos.PoolData{
			poolID(1):  *poolData(key1, 300),
			poolID(10): *poolData(key2, 100),
		},
		PoolBalances: map[pos.PoolID]amount.Amount{poolID(4): amount.FromAtoms(450)},
		Shares:       map[pos.PoolDelegationKey]amount.Amount{share(5, 6): amount.FromAtoms(150)},
		DelegationBalances: map[pos.DelegationID]amount.Amount{
			delegationID(5): amount.FromAtoms(500),
			delegationID(6): amount.FromAtoms(600),
			delegationID(8): amount.FromAtoms(200),
			delegationID(9): amount.FromAtoms(300),
		},
	})
	assert.Equal(t, expected.Values(), storage.Values())

	require.NoError(t, db.UndoMergeWithDelta(undo))
	assert.Equal(t, original.Values(), storage.Values())
}

func TestDBMergeContinuity(t *testing.T) {
	key := newPublicKey(t)
	storage := memstore.FromValues(memstore.Values{
		PoolData:     map[pos.PoolID]pos.PoolData{poolID(1): *poolData(key, 100)},
		PoolBalances: map[pos.PoolID]amount.Amount{poolID(1): amount.FromAtoms(100)},
	})
	original := storage.Clone()
	db := pos.NewDB(storage)

	tests := []struct {
		name string
		data *pos.DeltaData
		want error
	}{
		{
			"stale record",
			newDeltaData(
				map[pos.PoolID]pos.PoolDataDelta{poolID(1): accounting.NewDataDelta(poolData(key, 200), nil)},
				map[pos.PoolID]amount.SignedAmount{poolID(1): signed(5)},
				nil, nil, nil,
			),
			accounting.ErrDataDeltaContinuity,
		},
		{
			"create existing",
			newDeltaData(
				map[pos.PoolID]pos.PoolDataDelta{poolID(1): accounting.NewDataDelta(nil, poolData(key, 1))},
				nil, nil, nil, nil,
			),
			accounting.ErrDataDeltaContinuity,
		},
		{
			"negative balance",
			newDeltaData(
				map[pos.PoolID]pos.PoolDataDelta{poolID(2): accounting.NewDataDelta(nil, poolData(key, 1))},
				map[pos.PoolID]amount.SignedAmount{poolID(1): signed(-101)},
				nil, nil, nil,
			),
			pos.ErrNegativeBalance,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.MergeWithDelta(tt.data)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, original.Values(), storage.Values())
		})
	}
}

func TestReadThrough(t *testing.T) {
	key := newPublicKey(t)
	storage := memstore.FromValues(memstore.Values{
		PoolData:     map[pos.PoolID]pos.PoolData{poolID(1): *poolData(key, 100)},
		PoolBalances: map[pos.PoolID]amount.Amount{poolID(1): amount.FromAtoms(100), poolID(2): amount.FromAtoms(20)},
		Shares: map[pos.PoolDelegationKey]amount.Amount{
			share(5, 6): amount.FromAtoms(100),
			share(5, 7): amount.FromAtoms(10),
		},
		DelegationBalances: map[pos.DelegationID]amount.Amount{delegationID(6): amount.FromAtoms(100)},
		DelegationData:     map[pos.DelegationID]pos.DelegationData{delegationID(6): *delegationData(poolID(5), key)},
	})

	parent, err := pos.NewDeltaFromData(pos.NewDB(storage), newDeltaData(
		nil,
		map[pos.PoolID]amount.SignedAmount{poolID(2): signed(5)},
		map[pos.PoolDelegationKey]amount.SignedAmount{share(5, 6): signed(50), share(6, 6): signed(1)},
		nil, nil,
	))
	require.NoError(t, err)

	child, err := pos.NewDeltaFromData(parent, newDeltaData(
		map[pos.PoolID]pos.PoolDataDelta{poolID(1): accounting.NewDataDelta(poolData(key, 100), nil)},
		map[pos.PoolID]amount.SignedAmount{poolID(1): signed(-100)},
		map[pos.PoolDelegationKey]amount.SignedAmount{share(5, 7): signed(-10), share(5, 9): signed(5)},
		map[pos.DelegationID]amount.SignedAmount{delegationID(7): signed(7)},
		map[pos.DelegationID]pos.DelegationDataDelta{
			delegationID(7): accounting.NewDataDelta(nil, delegationData(poolID(5), key)),
		},
	))
	require.NoError(t, err)

	// present only below the child
	balance, ok, err := child.GetPoolBalance(poolID(2))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, amount.FromAtoms(25), balance)

	data, err := child.GetDelegationData(delegationID(6))
	require.NoError(t, err)
	assert.Equal(t, delegationData(poolID(5), key), data)

	balance, ok, err = child.GetDelegationBalance(delegationID(6))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, amount.FromAtoms(100), balance)

	// deleted in the child
	pool, err := child.GetPoolData(poolID(1))
	require.NoError(t, err)
	assert.Nil(t, pool)
	pool, err = parent.GetPoolData(poolID(1))
	require.NoError(t, err)
	assert.Equal(t, poolData(key, 100), pool)

	_, ok, err = child.GetPoolBalance(poolID(1))
	require.NoError(t, err)
	assert.False(t, ok)

	// created in the child
	data, err = child.GetDelegationData(delegationID(7))
	require.NoError(t, err)
	assert.Equal(t, delegationData(poolID(5), key), data)
	data, err = parent.GetDelegationData(delegationID(7))
	require.NoError(t, err)
	assert.Nil(t, data)

	shares, err := child.GetPoolDelegationShares(poolID(5))
	require.NoError(t, err)
	assert.Equal(t, pos.DelegationShares{
		{Delegation: delegationID(6), Amount: amount.FromAtoms(150)},
		{Delegation: delegationID(9), Amount: amount.FromAtoms(5)},
	}, shares)

	v, ok := shares.Get(delegationID(9))
	assert.True(t, ok)
	assert.Equal(t, amount.FromAtoms(5), v)
	_, ok = shares.Get(delegationID(7))
	assert.False(t, ok)

	one, ok, err := child.GetPoolDelegationShare(poolID(6), delegationID(6))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, amount.FromAtoms(1), one)

	// the returned record is a copy
	pool, err = parent.GetPoolData(poolID(1))
	require.NoError(t, err)
	pool.Pledge = amount.FromAtoms(1)
	pool, err = parent.GetPoolData(poolID(1))
	require.NoError(t, err)
	assert.Equal(t, amount.FromAtoms(100), pool.Pledge)
}

func TestReadThroughNegative(t *testing.T) {
	d, err := pos.NewDeltaFromData(pos.NewDB(memstore.New()), newDeltaData(
		nil,
		map[pos.PoolID]amount.SignedAmount{poolID(1): signed(-1)},
		map[pos.PoolDelegationKey]amount.SignedAmount{share(1, 1): signed(-1)},
		nil, nil,
	))
	require.NoError(t, err)

	_, _, err = d.GetPoolBalance(poolID(1))
	assert.True(t, errors.Is(err, pos.ErrNegativeBalance))

	_, err = d.GetPoolDelegationShares(poolID(1))
	assert.True(t, errors.Is(err, pos.ErrNegativeBalance))
}

func TestConsume(t *testing.T) {
	db := pos.NewDB(memstore.New())
	d, err := pos.NewDelta(db)
	require.NoError(t, err)

	data, err := d.Consume()
	require.NoError(t, err)
	assert.True(t, data.IsEmpty())
	assert.Nil(t, d.Data())

	_, err = d.Consume()
	assert.Equal(t, pos.ErrConsumed, err)

	_, err = d.MergeWithDelta(pos.NewDeltaData())
	assert.True(t, errors.Is(err, pos.ErrConsumed))

	assert.True(t, errors.Is(d.UndoDeltaMerge(pos.NewDeltaMergeUndo()), pos.ErrConsumed))

	_, _, err = d.GetPoolBalance(poolID(1))
	assert.True(t, errors.Is(err, pos.ErrConsumed))

	_, err = d.GetPoolDelegationShares(poolID(1))
	assert.True(t, errors.Is(err, pos.ErrConsumed))

	_, err = pos.NewDelta(d)
	assert.True(t, errors.Is(err, pos.ErrConsumed))
}

var errStorageIO = errors.New("storage io")

// failingStore fails balance reads or writes of pool balances on demand.
type failingStore struct {
	*memstore.Store
	failReads, failWrites bool
}

func (s *failingStore) GetPoolBalance(id pos.PoolID) (amount.Amount, bool, error) {
	if s.failReads {
		return amount.Amount{}, false, errStorageIO
	}
	return s.Store.GetPoolBalance(id)
}

func (s *failingStore) SetPoolBalance(id pos.PoolID, balance amount.Amount) error {
	if s.failWrites {
		return errStorageIO
	}
	return s.Store.SetPoolBalance(id, balance)
}

func TestStorageErrorsPropagate(t *testing.T) {
	storage := &failingStore{Store: memstore.FromValues(memstore.Values{
		PoolBalances: map[pos.PoolID]amount.Amount{poolID(1): amount.FromAtoms(100)},
	})}
	db := pos.NewDB(storage)
	spend := func() *pos.DeltaData {
		return newDeltaData(nil, map[pos.PoolID]amount.SignedAmount{poolID(1): signed(-40)}, nil, nil, nil)
	}

	undo, err := db.MergeWithDelta(spend())
	require.NoError(t, err)
	snapshot := storage.Clone()

	storage.failReads = true

	d1, err := pos.NewDelta(db)
	require.NoError(t, err)
	d2, err := pos.NewDeltaFromData(d1, spend())
	require.NoError(t, err)

	for _, d := range []*pos.Delta{d1, d2} {
		_, _, err = d.GetPoolBalance(poolID(1))
		assert.True(t, errors.Is(err, errStorageIO), "depth %d", d.Depth())
		assert.Equal(t, errStorageIO, errors.Cause(err))
	}

	_, err = db.MergeWithDelta(spend())
	assert.True(t, errors.Is(err, errStorageIO))
	assert.Equal(t, errStorageIO, errors.Cause(err))

	err = db.UndoMergeWithDelta(undo)
	assert.True(t, errors.Is(err, errStorageIO))
	assert.Equal(t, errStorageIO, errors.Cause(err))

	storage.failReads = false
	storage.failWrites = true

	err = db.UndoMergeWithDelta(undo)
	assert.True(t, errors.Is(err, errStorageIO))
	assert.Equal(t, errStorageIO, errors.Cause(err))
	assert.Equal(t, snapshot.Values(), storage.Values())

	storage.failWrites = false
	require.NoError(t, db.UndoMergeWithDelta(undo))
	balance, ok, err := storage.GetPoolBalance(poolID(1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, amount.FromAtoms(100), balance)
}

func TestNilDelta(t *testing.T) {
	db := pos.NewDB(memstore.New())

	_, err := pos.NewDeltaFromData(db, nil)
	assert.Equal(t, pos.ErrNilDelta, err)

	d, err := pos.NewDelta(db)
	require.NoError(t, err)
	_, err = d.MergeWithDelta(nil)
	assert.Equal(t, pos.ErrNilDelta, err)
	assert.Equal(t, pos.ErrNilDelta, d.UndoDeltaMerge(nil))
	assert.True(t, d.Data().IsEmpty())

	_, err = db.MergeWithDelta(nil)
	assert.Equal(t, pos.ErrNilDelta, err)
	assert.Equal(t, pos.ErrNilDelta, db.UndoMergeWithDelta(nil))
}

func TestMaxDepth(t *testing.T) {
	var parent pos.View = pos.NewDB(memstore.New())
	for i := 1; i <= 3; i++ {
		d, err := pos.NewDelta(parent, pos.WithMaxDepth(3))
		require.NoError(t, err)
		assert.Equal(t, i, d.Depth())
		parent = d
	}
	_, err := pos.NewDelta(parent, pos.WithMaxDepth(3))
	assert.True(t, errors.Is(err, pos.ErrChainTooDeep))

	_, err = pos.NewDelta(parent)
	assert.NoError(t, err)
}

func TestMergeFailureLeavesDeltaUnchanged(t *testing.T) {
	key := newPublicKey(t)
	d, err := pos.NewDeltaFromData(pos.NewDB(memstore.New()), newDeltaData(
		map[pos.PoolID]pos.PoolDataDelta{poolID(1): accounting.NewDataDelta(nil, poolData(key, 1))},
		map[pos.PoolID]amount.SignedAmount{poolID(1): signed(1)},
		nil,
		map[pos.DelegationID]amount.SignedAmount{delegationID(1): amount.MaxAmount.ToSigned()},
		map[pos.DelegationID]pos.DelegationDataDelta{
			delegationID(2): accounting.NewDataDelta(nil, delegationData(poolID(1), key)),
		},
	))
	require.NoError(t, err)
	before := d.Data().Clone()

	tests := []struct {
		name string
		data *pos.DeltaData
		want error
	}{
		{
			"overflow after pool balances merged",
			newDeltaData(
				map[pos.PoolID]pos.PoolDataDelta{poolID(2): accounting.NewDataDelta(nil, poolData(key, 2))},
				map[pos.PoolID]amount.SignedAmount{poolID(1): signed(5), poolID(2): signed(2)},
				map[pos.PoolDelegationKey]amount.SignedAmount{share(1, 1): signed(3)},
				map[pos.DelegationID]amount.SignedAmount{delegationID(1): signed(1)},
				nil,
			),
			amount.ErrArithmetic,
		},
		{
			"continuity in delegation data",
			newDeltaData(
				map[pos.PoolID]pos.PoolDataDelta{poolID(2): accounting.NewDataDelta(nil, poolData(key, 2))},
				map[pos.PoolID]amount.SignedAmount{poolID(1): signed(5)},
				nil, nil,
				map[pos.DelegationID]pos.DelegationDataDelta{
					delegationID(2): accounting.NewDataDelta(delegationData(poolID(9), key), nil),
				},
			),
			accounting.ErrDataDeltaContinuity,
		},
		{
			"continuity in pool data",
			newDeltaData(
				map[pos.PoolID]pos.PoolDataDelta{poolID(1): accounting.NewDataDelta(poolData(key, 2), nil)},
				nil, nil, nil, nil,
			),
			accounting.ErrDataDeltaContinuity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.MergeWithDelta(tt.data)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, before, d.Data())
		})
	}
}

func TestDeltaOverDeltaThenStore(t *testing.T) {
	key := newPublicKey(t)
	storage := memstore.FromValues(memstore.Values{
		PoolBalances: map[pos.PoolID]amount.Amount{poolID(1): amount.FromAtoms(10)},
	})
	original := storage.Clone()
	db := pos.NewDB(storage)

	block1, err := pos.NewDelta(db)
	require.NoError(t, err)
	block2, err := pos.NewDelta(block1)
	require.NoError(t, err)

	_, err = block2.MergeWithDelta(newDeltaData(
		map[pos.PoolID]pos.PoolDataDelta{poolID(2): accounting.NewDataDelta(nil, poolData(key, 7))},
		map[pos.PoolID]amount.SignedAmount{poolID(1): signed(-10), poolID(2): signed(7)},
		nil, nil, nil,
	))
	require.NoError(t, err)

	data2, err := block2.Consume()
	require.NoError(t, err)
	undo2, err := block1.MergeWithDelta(data2)
	require.NoError(t, err)

	data1, err := block1.Consume()
	require.NoError(t, err)
	undo1, err := db.MergeWithDelta(data1)
	require.NoError(t, err)

	_, ok, err := db.GetPoolBalance(poolID(1))
	require.NoError(t, err)
	assert.False(t, ok)
	balance, ok, err := db.GetPoolBalance(poolID(2))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, amount.FromAtoms(7), balance)

	require.NoError(t, db.UndoMergeWithDelta(undo1))
	assert.Equal(t, original.Values(), storage.Values())

	// the block1 undo reverts the merge inside the detached aggregate
	rehydrated, err := pos.NewDeltaFromData(db, data1)
	require.NoError(t, err)
	require.NoError(t, rehydrated.UndoDeltaMerge(undo2))
	assert.Equal(t, 0, rehydrated.Data().PoolBalances.Len())
	pool, err := rehydrated.GetPoolData(poolID(2))
	require.NoError(t, err)
	assert.Nil(t, pool)
}
