// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"github.com/pkg/errors"

	"github.com/vechain/posledger/accounting"
)

type (
	PoolDataDelta       = accounting.DataDelta[PoolData]
	DelegationDataDelta = accounting.DataDelta[DelegationData]

	PoolDataCollection          = accounting.DeltaDataCollection[PoolID, PoolData]
	DelegationDataCollection    = accounting.DeltaDataCollection[DelegationID, DelegationData]
	PoolBalanceCollection       = accounting.DeltaAmountCollection[PoolID]
	ShareCollection             = accounting.DeltaAmountCollection[PoolDelegationKey]
	DelegationBalanceCollection = accounting.DeltaAmountCollection[DelegationID]
)

// DeltaData aggregates the changes of all accounting collections.
type DeltaData struct {
	PoolData             *PoolDataCollection
	PoolBalances         *PoolBalanceCollection
	PoolDelegationShares *ShareCollection
	DelegationBalances   *DelegationBalanceCollection
	DelegationData       *DelegationDataCollection
}

// NewDeltaData creates an empty aggregate, the identity of merging.
func NewDeltaData() *DeltaData {
	return &DeltaData{
		PoolData:             accounting.NewDeltaDataCollection[PoolID, PoolData](),
		PoolBalances:         accounting.NewDeltaAmountCollection[PoolID](),
		PoolDelegationShares: accounting.NewDeltaAmountCollection[PoolDelegationKey](),
		DelegationBalances:   accounting.NewDeltaAmountCollection[DelegationID](),
		DelegationData:       accounting.NewDeltaDataCollection[DelegationID, DelegationData](),
	}
}

// IsEmpty returns whether no collection holds any key.
func (d *DeltaData) IsEmpty() bool {
	return d.KeyCount() == 0
}

// KeyCount returns the number of keys over all collections.
func (d *DeltaData) KeyCount() int {
	return d.PoolData.Len() +
		d.PoolBalances.Len() +
		d.PoolDelegationShares.Len() +
		d.DelegationBalances.Len() +
		d.DelegationData.Len()
}

// Clone returns an independent copy.
func (d *DeltaData) Clone() *DeltaData {
	return &DeltaData{
		PoolData:             d.PoolData.Clone(),
		PoolBalances:         d.PoolBalances.Clone(),
		PoolDelegationShares: d.PoolDelegationShares.Clone(),
		DelegationBalances:   d.DelegationBalances.Clone(),
		DelegationData:       d.DelegationData.Clone(),
	}
}

// Equal returns whether both aggregates hold the same changes.
func (d *DeltaData) Equal(other *DeltaData) bool {
	return d.PoolData.Equal(other.PoolData) &&
		d.PoolBalances.Equal(other.PoolBalances) &&
		d.PoolDelegationShares.Equal(other.PoolDelegationShares) &&
		d.DelegationBalances.Equal(other.DelegationBalances) &&
		d.DelegationData.Equal(other.DelegationData)
}

// DeltaMergeUndo reverts one merge of a DeltaData into a layer.
type DeltaMergeUndo struct {
	PoolData             *accounting.DataDeltaUndoCollection[PoolID, PoolData]
	PoolBalances         *accounting.DeltaAmountUndoCollection[PoolID]
	PoolDelegationShares *accounting.DeltaAmountUndoCollection[PoolDelegationKey]
	DelegationBalances   *accounting.DeltaAmountUndoCollection[DelegationID]
	DelegationData       *accounting.DataDeltaUndoCollection[DelegationID, DelegationData]
}

// NewDeltaMergeUndo creates an empty undo.
func NewDeltaMergeUndo() *DeltaMergeUndo {
	return &DeltaMergeUndo{
		PoolData:             accounting.NewDataDeltaUndoCollection[PoolID, PoolData](),
		PoolBalances:         accounting.NewDeltaAmountUndoCollection[PoolID](),
		PoolDelegationShares: accounting.NewDeltaAmountUndoCollection[PoolDelegationKey](),
		DelegationBalances:   accounting.NewDeltaAmountUndoCollection[DelegationID](),
		DelegationData:       accounting.NewDataDeltaUndoCollection[DelegationID, DelegationData](),
	}
}

// KeyCount returns the number of keys over all undo collections.
func (u *DeltaMergeUndo) KeyCount() int {
	return u.PoolData.Len() +
		u.PoolBalances.Len() +
		u.PoolDelegationShares.Len() +
		u.DelegationBalances.Len() +
		u.DelegationData.Len()
}

// merge merges other into d collection by collection. Either every
// collection is merged or, on error, d is left unchanged: data transitions are
// checked for continuity up front, amount merges that already went through
// are reverted when a later one overflows.
func (d *DeltaData) merge(other *DeltaData) (*DeltaMergeUndo, error) {
	if err := d.PoolData.CheckMerge(other.PoolData); err != nil {
		return nil, errors.WithMessage(err, "pool data")
	}
	if err := d.DelegationData.CheckMerge(other.DelegationData); err != nil {
		return nil, errors.WithMessage(err, "delegation data")
	}

	var (
		undo    = &DeltaMergeUndo{}
		reverts []func() error
		err     error
	)
	fail := func(err error, what string) (*DeltaMergeUndo, error) {
		for i := len(reverts) - 1; i >= 0; i-- {
			if rerr := reverts[i](); rerr != nil {
				// undoing an amount merge that just succeeded cannot overflow
				panic(errors.Wrap(rerr, "revert partial merge"))
			}
		}
		return nil, errors.WithMessage(err, what)
	}

	if undo.PoolBalances, err = d.PoolBalances.Merge(other.PoolBalances); err != nil {
		return fail(err, "pool balances")
	}
	reverts = append(reverts, func() error { return d.PoolBalances.Undo(undo.PoolBalances) })

	if undo.PoolDelegationShares, err = d.PoolDelegationShares.Merge(other.PoolDelegationShares); err != nil {
		return fail(err, "pool delegation shares")
	}
	reverts = append(reverts, func() error { return d.PoolDelegationShares.Undo(undo.PoolDelegationShares) })

	if undo.DelegationBalances, err = d.DelegationBalances.Merge(other.DelegationBalances); err != nil {
		return fail(err, "delegation balances")
	}
	reverts = append(reverts, func() error { return d.DelegationBalances.Undo(undo.DelegationBalances) })

	if undo.PoolData, err = d.PoolData.Merge(other.PoolData); err != nil {
		return fail(err, "pool data")
	}
	if undo.DelegationData, err = d.DelegationData.Merge(other.DelegationData); err != nil {
		// checked above, only reachable if other aliases d
		return fail(err, "delegation data")
	}
	return undo, nil
}

// undo reverts a merge. The order is the reverse of merge.
func (d *DeltaData) undo(undo *DeltaMergeUndo) error {
	if err := d.DelegationData.Undo(undo.DelegationData); err != nil {
		return errors.WithMessage(err, "delegation data")
	}
	if err := d.DelegationBalances.Undo(undo.DelegationBalances); err != nil {
		return errors.WithMessage(err, "delegation balances")
	}
	if err := d.PoolDelegationShares.Undo(undo.PoolDelegationShares); err != nil {
		return errors.WithMessage(err, "pool delegation shares")
	}
	if err := d.PoolBalances.Undo(undo.PoolBalances); err != nil {
		return errors.WithMessage(err, "pool balances")
	}
	if err := d.PoolData.Undo(undo.PoolData); err != nil {
		return errors.WithMessage(err, "pool data")
	}
	return nil
}
