// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/posledger/amount"
	"github.com/vechain/posledger/pos"
	"github.com/vechain/posledger/pos/memstore"
)

func requireBalance(t *testing.T, want uint64, get func() (amount.Amount, bool, error)) {
	t.Helper()
	v, ok, err := get()
	require.NoError(t, err)
	assert.Equal(t, want != 0, ok)
	assert.Equal(t, amount.FromAtoms(want), v)
}

func TestPoolLifecycle(t *testing.T) {
	storage := memstore.New()
	db := pos.NewDB(storage)
	d, err := pos.NewDelta(db)
	require.NoError(t, err)

	key, owner := newPublicKey(t), newPublicKey(t)

	pool, createUndo, err := d.CreatePool([]byte("outpoint-1"), amount.FromAtoms(1000), key)
	require.NoError(t, err)
	assert.Equal(t, pos.DerivePoolID([]byte("outpoint-1")), pool)
	requireBalance(t, 1000, func() (amount.Amount, bool, error) { return d.GetPoolBalance(pool) })

	_, _, err = d.CreatePool([]byte("outpoint-1"), amount.FromAtoms(1), key)
	assert.True(t, errors.Is(err, pos.ErrPoolExists))

	_, _, err = d.CreateDelegation(pos.DerivePoolID([]byte("missing")), owner, []byte("outpoint-2"))
	assert.True(t, errors.Is(err, pos.ErrPoolNotFound))

	delegation, _, err := d.CreateDelegation(pool, owner, []byte("outpoint-2"))
	require.NoError(t, err)
	data, err := d.GetDelegationData(delegation)
	require.NoError(t, err)
	assert.Equal(t, &pos.DelegationData{Pool: pool, Owner: owner}, data)

	_, _, err = d.CreateDelegation(pool, owner, []byte("outpoint-2"))
	assert.True(t, errors.Is(err, pos.ErrDelegationExists))

	stakeUndo, err := d.DelegateStaking(delegation, amount.FromAtoms(300))
	require.NoError(t, err)
	requireBalance(t, 1300, func() (amount.Amount, bool, error) { return d.GetPoolBalance(pool) })
	requireBalance(t, 300, func() (amount.Amount, bool, error) { return d.GetDelegationBalance(delegation) })
	requireBalance(t, 300, func() (amount.Amount, bool, error) { return d.GetPoolDelegationShare(pool, delegation) })

	_, err = d.SpendFromShare(delegation, amount.FromAtoms(301))
	assert.True(t, errors.Is(err, pos.ErrNegativeBalance))

	_, err = d.SpendFromShare(delegation, amount.FromAtoms(100))
	require.NoError(t, err)
	requireBalance(t, 1200, func() (amount.Amount, bool, error) { return d.GetPoolBalance(pool) })
	requireBalance(t, 200, func() (amount.Amount, bool, error) { return d.GetDelegationBalance(delegation) })

	_, err = d.DecommissionPool(pool)
	require.NoError(t, err)
	requireBalance(t, 0, func() (amount.Amount, bool, error) { return d.GetPoolBalance(pool) })

	_, err = d.DelegateStaking(delegation, amount.FromAtoms(1))
	assert.True(t, errors.Is(err, pos.ErrPoolNotFound))

	// shares of a decommissioned pool can still be spent
	_, err = d.SpendFromShare(delegation, amount.FromAtoms(200))
	require.NoError(t, err)
	requireBalance(t, 0, func() (amount.Amount, bool, error) { return d.GetDelegationBalance(delegation) })
	requireBalance(t, 0, func() (amount.Amount, bool, error) { return d.GetPoolDelegationShare(pool, delegation) })

	_, err = d.DecommissionPool(pool)
	assert.True(t, errors.Is(err, pos.ErrPoolNotFound))

	data1, err := d.Consume()
	require.NoError(t, err)
	_, err = db.MergeWithDelta(data1)
	require.NoError(t, err)

	values := storage.Values()
	assert.Empty(t, values.PoolData)
	assert.Empty(t, values.PoolBalances)
	assert.Empty(t, values.Shares)
	assert.Empty(t, values.DelegationBalances)
	assert.Equal(t, map[pos.DelegationID]pos.DelegationData{delegation: {Pool: pool, Owner: owner}}, values.DelegationData)

	assert.NotNil(t, createUndo)
	assert.NotNil(t, stakeUndo)
}

func TestOperationUndo(t *testing.T) {
	d, err := pos.NewDelta(pos.NewDB(memstore.New()))
	require.NoError(t, err)
	key := newPublicKey(t)

	pool, createUndo, err := d.CreatePool([]byte("seed"), amount.FromAtoms(50), key)
	require.NoError(t, err)
	delegation, delegationUndo, err := d.CreateDelegation(pool, key, []byte("seed"))
	require.NoError(t, err)
	stakeUndo, err := d.DelegateStaking(delegation, amount.FromAtoms(5))
	require.NoError(t, err)

	require.NoError(t, d.UndoDeltaMerge(stakeUndo))
	requireBalance(t, 50, func() (amount.Amount, bool, error) { return d.GetPoolBalance(pool) })
	requireBalance(t, 0, func() (amount.Amount, bool, error) { return d.GetDelegationBalance(delegation) })

	require.NoError(t, d.UndoDeltaMerge(delegationUndo))
	data, err := d.GetDelegationData(delegation)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, d.UndoDeltaMerge(createUndo))
	pd, err := d.GetPoolData(pool)
	require.NoError(t, err)
	assert.Nil(t, pd)
	requireBalance(t, 0, func() (amount.Amount, bool, error) { return d.GetPoolBalance(pool) })
	assert.Equal(t, 0, d.Data().PoolBalances.Len())
}

func TestDelegateStakingOverflow(t *testing.T) {
	d, err := pos.NewDelta(pos.NewDB(memstore.New()))
	require.NoError(t, err)
	key := newPublicKey(t)

	pool, _, err := d.CreatePool([]byte("seed"), amount.MaxAmount, key)
	require.NoError(t, err)
	delegation, _, err := d.CreateDelegation(pool, key, []byte("seed"))
	require.NoError(t, err)
	before := d.Data().Clone()

	_, err = d.DelegateStaking(delegation, amount.FromAtoms(1))
	assert.True(t, errors.Is(err, amount.ErrArithmetic))
	assert.Equal(t, before, d.Data())
}
