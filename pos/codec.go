// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/posledger/accounting"
	"github.com/vechain/posledger/amount"
)

// dataEntry is the rlp form of one transition.
type dataEntry[K any, T any] struct {
	Key  K
	From *T `rlp:"nil"`
	To   *T `rlp:"nil"`
}

// amountEntry is the rlp form of one signed change.
type amountEntry[K any] struct {
	Key    K
	Amount amount.SignedAmount
}

// deltaRLP is the rlp form of both DeltaData and DeltaMergeUndo, entries
// in ascending key order.
type deltaRLP struct {
	PoolData             []dataEntry[PoolID, PoolData]
	PoolBalances         []amountEntry[PoolID]
	PoolDelegationShares []amountEntry[PoolDelegationKey]
	DelegationBalances   []amountEntry[DelegationID]
	DelegationData       []dataEntry[DelegationID, DelegationData]
}

// EncodeDeltaData serializes an aggregate. The encoding is deterministic.
func EncodeDeltaData(d *DeltaData) ([]byte, error) {
	return rlp.EncodeToBytes(&deltaRLP{
		PoolData:             dataEntries[PoolID, PoolData](d.PoolData),
		PoolBalances:         amountEntries[PoolID](d.PoolBalances),
		PoolDelegationShares: amountEntries[PoolDelegationKey](d.PoolDelegationShares),
		DelegationBalances:   amountEntries[DelegationID](d.DelegationBalances),
		DelegationData:       dataEntries[DelegationID, DelegationData](d.DelegationData),
	})
}

// DecodeDeltaData parses an aggregate encoded by EncodeDeltaData.
func DecodeDeltaData(b []byte) (*DeltaData, error) {
	var v deltaRLP
	if err := rlp.DecodeBytes(b, &v); err != nil {
		return nil, errors.Wrap(err, "decode delta data")
	}

	d := NewDeltaData()
	err := decodeData(v.PoolData, func(k PoolID, t PoolDataDelta) error {
		_, err := d.PoolData.MergeDelta(k, t)
		return err
	})
	if err != nil {
		return nil, errors.WithMessage(err, "pool data")
	}
	if err := decodeAmounts(v.PoolBalances, d.PoolBalances.Add); err != nil {
		return nil, errors.WithMessage(err, "pool balances")
	}
	if err := decodeAmounts(v.PoolDelegationShares, d.PoolDelegationShares.Add); err != nil {
		return nil, errors.WithMessage(err, "pool delegation shares")
	}
	if err := decodeAmounts(v.DelegationBalances, d.DelegationBalances.Add); err != nil {
		return nil, errors.WithMessage(err, "delegation balances")
	}
	err = decodeData(v.DelegationData, func(k DelegationID, t DelegationDataDelta) error {
		_, err := d.DelegationData.MergeDelta(k, t)
		return err
	})
	if err != nil {
		return nil, errors.WithMessage(err, "delegation data")
	}
	return d, nil
}

// EncodeUndo serializes an undo. The encoding is deterministic.
func EncodeUndo(u *DeltaMergeUndo) ([]byte, error) {
	return rlp.EncodeToBytes(&deltaRLP{
		PoolData:             dataEntries[PoolID, PoolData](u.PoolData),
		PoolBalances:         amountEntries[PoolID](u.PoolBalances),
		PoolDelegationShares: amountEntries[PoolDelegationKey](u.PoolDelegationShares),
		DelegationBalances:   amountEntries[DelegationID](u.DelegationBalances),
		DelegationData:       dataEntries[DelegationID, DelegationData](u.DelegationData),
	})
}

// DecodeUndo parses an undo encoded by EncodeUndo.
func DecodeUndo(b []byte) (*DeltaMergeUndo, error) {
	var v deltaRLP
	if err := rlp.DecodeBytes(b, &v); err != nil {
		return nil, errors.Wrap(err, "decode undo")
	}

	u := NewDeltaMergeUndo()
	if err := decodeData(v.PoolData, setter(u.PoolData.Set)); err != nil {
		return nil, errors.WithMessage(err, "pool data")
	}
	if err := decodeAmounts(v.PoolBalances, setter(u.PoolBalances.Set)); err != nil {
		return nil, errors.WithMessage(err, "pool balances")
	}
	if err := decodeAmounts(v.PoolDelegationShares, setter(u.PoolDelegationShares.Set)); err != nil {
		return nil, errors.WithMessage(err, "pool delegation shares")
	}
	if err := decodeAmounts(v.DelegationBalances, setter(u.DelegationBalances.Set)); err != nil {
		return nil, errors.WithMessage(err, "delegation balances")
	}
	if err := decodeData(v.DelegationData, setter(u.DelegationData.Set)); err != nil {
		return nil, errors.WithMessage(err, "delegation data")
	}
	return u, nil
}

func setter[K, V any](set func(K, V)) func(K, V) error {
	return func(k K, v V) error {
		set(k, v)
		return nil
	}
}

func dataEntries[K any, T comparable](src transitions[K, T]) []dataEntry[K, T] {
	keys := src.Keys()
	entries := make([]dataEntry[K, T], 0, len(keys))
	for _, k := range keys {
		d, _ := src.Get(k)
		entries = append(entries, dataEntry[K, T]{Key: k, From: d.From, To: d.To})
	}
	return entries
}

func amountEntries[K any](src changes[K]) []amountEntry[K] {
	keys := src.Keys()
	entries := make([]amountEntry[K], 0, len(keys))
	for _, k := range keys {
		v, _ := src.Get(k)
		entries = append(entries, amountEntry[K]{Key: k, Amount: v})
	}
	return entries
}

func decodeData[K accounting.Key[K], T comparable](entries []dataEntry[K, T], set func(K, accounting.DataDelta[T]) error) error {
	for i, e := range entries {
		if i > 0 && entries[i-1].Key.Compare(e.Key) >= 0 {
			return errors.Errorf("key %v out of order", e.Key)
		}
		if err := set(e.Key, accounting.NewDataDelta(e.From, e.To)); err != nil {
			return err
		}
	}
	return nil
}

func decodeAmounts[K accounting.Key[K]](entries []amountEntry[K], set func(K, amount.SignedAmount) error) error {
	for i, e := range entries {
		if i > 0 && entries[i-1].Key.Compare(e.Key) >= 0 {
			return errors.Errorf("key %v out of order", e.Key)
		}
		if err := set(e.Key, e.Amount); err != nil {
			return err
		}
	}
	return nil
}
