// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"slices"

	"github.com/vechain/posledger/amount"
)

// DelegationShare is the share one delegation holds in a pool.
type DelegationShare struct {
	Delegation DelegationID
	Amount     amount.Amount
}

// DelegationShares lists the shares of a pool, ordered by delegation id.
type DelegationShares []DelegationShare

// Get returns the share of the given delegation.
func (s DelegationShares) Get(id DelegationID) (amount.Amount, bool) {
	i, found := slices.BinarySearchFunc(s, id, func(e DelegationShare, id DelegationID) int {
		return e.Delegation.Compare(id)
	})
	if !found {
		return amount.Amount{}, false
	}
	return s[i].Amount, true
}

// Sort orders the shares by delegation id.
func (s DelegationShares) Sort() {
	slices.SortFunc(s, func(a, b DelegationShare) int { return a.Delegation.Compare(b.Delegation) })
}

// View is the read side shared by every layer of the accounting chain.
// Absent keys are reported by the bool result, errors are reserved for
// failures of the underlying storage.
type View interface {
	GetPoolData(id PoolID) (*PoolData, error)
	GetPoolBalance(id PoolID) (amount.Amount, bool, error)
	GetPoolDelegationShares(id PoolID) (DelegationShares, error)
	GetPoolDelegationShare(id PoolID, delegation DelegationID) (amount.Amount, bool, error)
	GetDelegationData(id DelegationID) (*DelegationData, error)
	GetDelegationBalance(id DelegationID) (amount.Amount, bool, error)
}

// StorageRead is implemented by persistent accounting storage.
type StorageRead interface {
	View
}

// StorageWrite is implemented by persistent accounting storage that can be
// modified. Amounts are absolute, a zero balance is deleted rather than set.
type StorageWrite interface {
	StorageRead

	SetPoolData(id PoolID, data PoolData) error
	DeletePoolData(id PoolID) error

	SetPoolBalance(id PoolID, balance amount.Amount) error
	// DeletePoolBalance removes the balance of a pool.
	DeletePoolBalance(id PoolID) error

	SetPoolDelegationShare(id PoolID, delegation DelegationID, share amount.Amount) error
	DeletePoolDelegationShare(id PoolID, delegation DelegationID) error

	SetDelegationBalance(id DelegationID, balance amount.Amount) error
	DeleteDelegationBalance(id DelegationID) error

	SetDelegationData(id DelegationID, data DelegationData) error
	DeleteDelegationData(id DelegationID) error
}
