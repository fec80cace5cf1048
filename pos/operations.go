// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"github.com/pkg/errors"

	"github.com/vechain/posledger/accounting"
	"github.com/vechain/posledger/amount"
)

// CreatePool registers a pool derived from seed, funded with pledge.
// The returned undo reverts the creation when applied to d.
func (d *Delta) CreatePool(seed []byte, pledge amount.Amount, decommissionKey PublicKey) (PoolID, *DeltaMergeUndo, error) {
	id := DerivePoolID(seed)
	existing, err := d.GetPoolData(id)
	if err != nil {
		return PoolID{}, nil, err
	}
	if existing != nil {
		return PoolID{}, nil, errors.WithMessagef(ErrPoolExists, "pool %v", id)
	}
	if err := d.checkPoolBalance(id, pledge.ToSigned()); err != nil {
		return PoolID{}, nil, err
	}

	change := NewDeltaData()
	if _, err := change.PoolData.MergeDelta(id, accounting.NewDataDelta(nil, accounting.Some(NewPoolData(decommissionKey, pledge)))); err != nil {
		return PoolID{}, nil, err
	}
	if err := change.PoolBalances.Add(id, pledge.ToSigned()); err != nil {
		return PoolID{}, nil, err
	}

	undo, err := d.MergeWithDelta(change)
	if err != nil {
		return PoolID{}, nil, err
	}
	logger.Debug("pool created", "id", id.AbbrevString(), "pledge", pledge)
	return id, undo, nil
}

// DecommissionPool removes the pool record and its balance. Shares of the
// pool stay until they are spent.
func (d *Delta) DecommissionPool(id PoolID) (*DeltaMergeUndo, error) {
	data, err := d.GetPoolData(id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.WithMessagef(ErrPoolNotFound, "pool %v", id)
	}
	balance, _, err := d.GetPoolBalance(id)
	if err != nil {
		return nil, err
	}

	change := NewDeltaData()
	if _, err := change.PoolData.MergeDelta(id, accounting.NewDataDelta(data, nil)); err != nil {
		return nil, err
	}
	if err := change.PoolBalances.Add(id, balance.ToSigned().Neg()); err != nil {
		return nil, err
	}

	undo, err := d.MergeWithDelta(change)
	if err != nil {
		return nil, err
	}
	logger.Debug("pool decommissioned", "id", id.AbbrevString(), "balance", balance)
	return undo, nil
}

// CreateDelegation registers a delegation to pool derived from seed.
func (d *Delta) CreateDelegation(pool PoolID, owner PublicKey, seed []byte) (DelegationID, *DeltaMergeUndo, error) {
	poolData, err := d.GetPoolData(pool)
	if err != nil {
		return DelegationID{}, nil, err
	}
	if poolData == nil {
		return DelegationID{}, nil, errors.WithMessagef(ErrPoolNotFound, "pool %v", pool)
	}

	id := DeriveDelegationID(seed)
	existing, err := d.GetDelegationData(id)
	if err != nil {
		return DelegationID{}, nil, err
	}
	if existing != nil {
		return DelegationID{}, nil, errors.WithMessagef(ErrDelegationExists, "delegation %v", id)
	}

	change := NewDeltaData()
	if _, err := change.DelegationData.MergeDelta(id, accounting.NewDataDelta(nil, accounting.Some(NewDelegationData(pool, owner)))); err != nil {
		return DelegationID{}, nil, err
	}

	undo, err := d.MergeWithDelta(change)
	if err != nil {
		return DelegationID{}, nil, err
	}
	logger.Debug("delegation created", "id", id.AbbrevString(), "pool", pool.AbbrevString())
	return id, undo, nil
}

// DelegateStaking adds value to the balance of a delegation, to its share in
// the target pool and to the pool balance.
func (d *Delta) DelegateStaking(delegation DelegationID, value amount.Amount) (*DeltaMergeUndo, error) {
	data, err := d.GetDelegationData(delegation)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.WithMessagef(ErrDelegationNotFound, "delegation %v", delegation)
	}
	poolData, err := d.GetPoolData(data.Pool)
	if err != nil {
		return nil, err
	}
	if poolData == nil {
		return nil, errors.WithMessagef(ErrPoolNotFound, "pool %v", data.Pool)
	}
	return d.moveStake(delegation, data.Pool, true, value.ToSigned())
}

// SpendFromShare withdraws value from a delegation. The pool balance is only
// reduced while the pool is still active.
func (d *Delta) SpendFromShare(delegation DelegationID, value amount.Amount) (*DeltaMergeUndo, error) {
	data, err := d.GetDelegationData(delegation)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.WithMessagef(ErrDelegationNotFound, "delegation %v", delegation)
	}
	poolData, err := d.GetPoolData(data.Pool)
	if err != nil {
		return nil, err
	}
	return d.moveStake(delegation, data.Pool, poolData != nil, value.ToSigned().Neg())
}

func (d *Delta) moveStake(delegation DelegationID, pool PoolID, withPool bool, change amount.SignedAmount) (*DeltaMergeUndo, error) {
	share := PoolDelegationKey{Pool: pool, Delegation: delegation}

	// resolve every balance first, so a bad change is rejected before merging
	if withPool {
		if err := d.checkPoolBalance(pool, change); err != nil {
			return nil, err
		}
	}
	current, _, err := d.GetPoolDelegationShare(pool, delegation)
	if err != nil {
		return nil, err
	}
	if _, _, err := addChange(current, change); err != nil {
		return nil, errors.WithMessagef(err, "share %v", share)
	}
	current, _, err = d.GetDelegationBalance(delegation)
	if err != nil {
		return nil, err
	}
	if _, _, err := addChange(current, change); err != nil {
		return nil, errors.WithMessagef(err, "delegation balance %v", delegation)
	}

	delta := NewDeltaData()
	if withPool {
		if err := delta.PoolBalances.Add(pool, change); err != nil {
			return nil, err
		}
	}
	if err := delta.PoolDelegationShares.Add(share, change); err != nil {
		return nil, err
	}
	if err := delta.DelegationBalances.Add(delegation, change); err != nil {
		return nil, err
	}

	undo, err := d.MergeWithDelta(delta)
	if err != nil {
		return nil, err
	}
	logger.Debug("stake moved", "delegation", delegation.AbbrevString(), "change", change)
	return undo, nil
}

func (d *Delta) checkPoolBalance(id PoolID, change amount.SignedAmount) error {
	current, _, err := d.GetPoolBalance(id)
	if err != nil {
		return err
	}
	if _, _, err := addChange(current, change); err != nil {
		return errors.WithMessagef(err, "pool balance %v", id)
	}
	return nil
}
