// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"github.com/pkg/errors"

	"github.com/vechain/posledger/accounting"
	"github.com/vechain/posledger/amount"
)

// DB is the base layer of the accounting chain. It applies aggregates
// directly onto storage, which holds absolute values.
type DB struct {
	storage StorageWrite
}

// NewDB creates the base layer over storage.
func NewDB(storage StorageWrite) *DB {
	return &DB{storage: storage}
}

// GetPoolData implements View.
func (db *DB) GetPoolData(id PoolID) (*PoolData, error) {
	return db.storage.GetPoolData(id)
}

// GetPoolBalance implements View.
func (db *DB) GetPoolBalance(id PoolID) (amount.Amount, bool, error) {
	return db.storage.GetPoolBalance(id)
}

// GetPoolDelegationShares implements View.
func (db *DB) GetPoolDelegationShares(id PoolID) (DelegationShares, error) {
	return db.storage.GetPoolDelegationShares(id)
}

// GetPoolDelegationShare implements View.
func (db *DB) GetPoolDelegationShare(id PoolID, delegation DelegationID) (amount.Amount, bool, error) {
	return db.storage.GetPoolDelegationShare(id, delegation)
}

// GetDelegationData implements View.
func (db *DB) GetDelegationData(id DelegationID) (*DelegationData, error) {
	return db.storage.GetDelegationData(id)
}

// GetDelegationBalance implements View.
func (db *DB) GetDelegationBalance(id DelegationID) (amount.Amount, bool, error) {
	return db.storage.GetDelegationBalance(id)
}

// MergeWithDelta writes data onto storage and returns the undo to revert it.
//
// Every touched key is read and the resulting value computed before the first
// write, so continuity and arithmetic errors leave storage untouched. A
// storage error while writing leaves the writes done so far in place; wrap
// the storage in a batch when that matters.
func (db *DB) MergeWithDelta(data *DeltaData) (*DeltaMergeUndo, error) {
	if data == nil {
		return nil, ErrNilDelta
	}
	undo := NewDeltaMergeUndo()
	w, err := db.stage(data, undo)
	if err == nil {
		err = w.flush()
	}
	metricsHandleMerge(layerDB, data.KeyCount(), err)
	if err != nil {
		return nil, errors.WithMessage(err, "merge into storage")
	}
	logger.Debug("merged delta into storage", "keys", data.KeyCount(), "writes", len(w))
	return undo, nil
}

// UndoMergeWithDelta restores the values storage held before the merge that
// returned undo.
func (db *DB) UndoMergeWithDelta(undo *DeltaMergeUndo) error {
	if undo == nil {
		return ErrNilDelta
	}
	w, err := db.stageUndo(undo)
	if err == nil {
		err = w.flush()
	}
	metricsHandleUndo(layerDB, err)
	if err != nil {
		return errors.WithMessage(err, "undo merge from storage")
	}
	logger.Debug("reverted merge from storage", "keys", undo.KeyCount(), "writes", len(w))
	return nil
}

func (db *DB) stage(data *DeltaData, undo *DeltaMergeUndo) (writes, error) {
	var w writes
	if err := stageData(&w, db.poolDataStore(), data.PoolData, undo.PoolData.Set); err != nil {
		return nil, errors.WithMessage(err, "pool data")
	}
	if err := stageAmounts(&w, db.poolBalanceStore(), data.PoolBalances, false, undo.PoolBalances.Set); err != nil {
		return nil, errors.WithMessage(err, "pool balances")
	}
	if err := stageAmounts(&w, db.shareStore(), data.PoolDelegationShares, false, undo.PoolDelegationShares.Set); err != nil {
		return nil, errors.WithMessage(err, "pool delegation shares")
	}
	if err := stageAmounts(&w, db.delegationBalanceStore(), data.DelegationBalances, false, undo.DelegationBalances.Set); err != nil {
		return nil, errors.WithMessage(err, "delegation balances")
	}
	if err := stageData(&w, db.delegationDataStore(), data.DelegationData, undo.DelegationData.Set); err != nil {
		return nil, errors.WithMessage(err, "delegation data")
	}
	return w, nil
}

func (db *DB) stageUndo(undo *DeltaMergeUndo) (writes, error) {
	var w writes
	if err := stageData(&w, db.delegationDataStore(), undo.DelegationData, nil); err != nil {
		return nil, errors.WithMessage(err, "delegation data")
	}
	if err := stageAmounts(&w, db.delegationBalanceStore(), undo.DelegationBalances, true, nil); err != nil {
		return nil, errors.WithMessage(err, "delegation balances")
	}
	if err := stageAmounts(&w, db.shareStore(), undo.PoolDelegationShares, true, nil); err != nil {
		return nil, errors.WithMessage(err, "pool delegation shares")
	}
	if err := stageAmounts(&w, db.poolBalanceStore(), undo.PoolBalances, true, nil); err != nil {
		return nil, errors.WithMessage(err, "pool balances")
	}
	if err := stageData(&w, db.poolDataStore(), undo.PoolData, nil); err != nil {
		return nil, errors.WithMessage(err, "pool data")
	}
	return w, nil
}

type writes []func() error

func (w writes) flush() error {
	for _, fn := range w {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// dataStore adapts the storage methods of one record kind.
type dataStore[K any, T any] struct {
	get func(K) (*T, error)
	set func(K, T) error
	del func(K) error
}

// amountStore adapts the storage methods of one balance kind.
type amountStore[K any] struct {
	get func(K) (amount.Amount, bool, error)
	set func(K, amount.Amount) error
	del func(K) error
}

// transitions is implemented by both a collection and its undo.
type transitions[K any, T comparable] interface {
	Keys() []K
	Get(K) (accounting.DataDelta[T], bool)
}

// changes is implemented by both an amount collection and its undo.
type changes[K any] interface {
	Keys() []K
	Get(K) (amount.SignedAmount, bool)
}

func stageData[K any, T comparable](
	w *writes,
	st dataStore[K, T],
	src transitions[K, T],
	record func(K, accounting.DataDelta[T]),
) error {
	for _, k := range src.Keys() {
		delta, _ := src.Get(k)
		stored, err := st.get(k)
		if err != nil {
			return err
		}
		if !delta.StartsAt(stored) {
			return errors.WithMessagef(accounting.ErrDataDeltaContinuity, "key %v: %v does not start at the stored record", k, delta)
		}
		if record != nil {
			record(k, delta.Inverse())
		}
		if delta.IsNoop() {
			continue
		}
		if delta.To == nil {
			*w = append(*w, func() error { return st.del(k) })
		} else {
			to := *delta.To
			*w = append(*w, func() error { return st.set(k, to) })
		}
	}
	return nil
}

func stageAmounts[K any](
	w *writes,
	st amountStore[K],
	src changes[K],
	negate bool,
	record func(K, amount.SignedAmount),
) error {
	for _, k := range src.Keys() {
		change, _ := src.Get(k)
		if negate {
			change = change.Neg()
		}
		stored, _, err := st.get(k)
		if err != nil {
			return err
		}
		v, ok, err := addChange(stored, change)
		if err != nil {
			return errors.WithMessagef(err, "key %v", k)
		}
		if record != nil {
			record(k, change)
		}
		if ok {
			*w = append(*w, func() error { return st.set(k, v) })
		} else {
			*w = append(*w, func() error { return st.del(k) })
		}
	}
	return nil
}

func (db *DB) poolDataStore() dataStore[PoolID, PoolData] {
	return dataStore[PoolID, PoolData]{
		get: db.storage.GetPoolData,
		set: db.storage.SetPoolData,
		del: db.storage.DeletePoolData,
	}
}

func (db *DB) delegationDataStore() dataStore[DelegationID, DelegationData] {
	return dataStore[DelegationID, DelegationData]{
		get: db.storage.GetDelegationData,
		set: db.storage.SetDelegationData,
		del: db.storage.DeleteDelegationData,
	}
}

func (db *DB) poolBalanceStore() amountStore[PoolID] {
	return amountStore[PoolID]{
		get: db.storage.GetPoolBalance,
		set: db.storage.SetPoolBalance,
		del: db.storage.DeletePoolBalance,
	}
}

func (db *DB) delegationBalanceStore() amountStore[DelegationID] {
	return amountStore[DelegationID]{
		get: db.storage.GetDelegationBalance,
		set: db.storage.SetDelegationBalance,
		del: db.storage.DeleteDelegationBalance,
	}
}

func (db *DB) shareStore() amountStore[PoolDelegationKey] {
	return amountStore[PoolDelegationKey]{
		get: func(k PoolDelegationKey) (amount.Amount, bool, error) {
			return db.storage.GetPoolDelegationShare(k.Pool, k.Delegation)
		},
		set: func(k PoolDelegationKey, v amount.Amount) error {
			return db.storage.SetPoolDelegationShare(k.Pool, k.Delegation, v)
		},
		del: func(k PoolDelegationKey) error {
			return db.storage.DeletePoolDelegationShare(k.Pool, k.Delegation)
		},
	}
}
