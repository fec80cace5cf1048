// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package memstore implements accounting storage in memory.
package memstore

import (
	"maps"

	"github.com/vechain/posledger/amount"
	"github.com/vechain/posledger/pos"
)

// Values is the content of a Store.
type Values struct {
	PoolData           map[pos.PoolID]pos.PoolData
	PoolBalances       map[pos.PoolID]amount.Amount
	Shares             map[pos.PoolDelegationKey]amount.Amount
	DelegationBalances map[pos.DelegationID]amount.Amount
	DelegationData     map[pos.DelegationID]pos.DelegationData
}

// Store is a map backed pos.StorageWrite. It is not safe for concurrent use.
type Store struct {
	v Values
}

var _ pos.StorageWrite = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return FromValues(Values{})
}

// FromValues creates a store holding a copy of v. Zero amounts are dropped.
func FromValues(v Values) *Store {
	s := &Store{v: Values{
		PoolData:           maps.Clone(v.PoolData),
		PoolBalances:       nonZero(v.PoolBalances),
		Shares:             nonZero(v.Shares),
		DelegationBalances: nonZero(v.DelegationBalances),
		DelegationData:     maps.Clone(v.DelegationData),
	}}
	if s.v.PoolData == nil {
		s.v.PoolData = make(map[pos.PoolID]pos.PoolData)
	}
	if s.v.DelegationData == nil {
		s.v.DelegationData = make(map[pos.DelegationID]pos.DelegationData)
	}
	return s
}

func nonZero[K comparable](m map[K]amount.Amount) map[K]amount.Amount {
	out := make(map[K]amount.Amount, len(m))
	for k, v := range m {
		if !v.IsZero() {
			out[k] = v
		}
	}
	return out
}

// Values returns a copy of the content.
func (s *Store) Values() Values {
	return s.Clone().v
}

// Clone returns an independent copy.
func (s *Store) Clone() *Store {
	return FromValues(s.v)
}

// Equal returns whether both stores hold the same content.
func (s *Store) Equal(other *Store) bool {
	return maps.Equal(s.v.PoolData, other.v.PoolData) &&
		maps.Equal(s.v.PoolBalances, other.v.PoolBalances) &&
		maps.Equal(s.v.Shares, other.v.Shares) &&
		maps.Equal(s.v.DelegationBalances, other.v.DelegationBalances) &&
		maps.Equal(s.v.DelegationData, other.v.DelegationData)
}

func (s *Store) GetPoolData(id pos.PoolID) (*pos.PoolData, error) {
	if d, ok := s.v.PoolData[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *Store) GetPoolBalance(id pos.PoolID) (amount.Amount, bool, error) {
	v, ok := s.v.PoolBalances[id]
	return v, ok, nil
}

func (s *Store) GetPoolDelegationShares(id pos.PoolID) (pos.DelegationShares, error) {
	var shares pos.DelegationShares
	for k, v := range s.v.Shares {
		if k.Pool == id {
			shares = append(shares, pos.DelegationShare{Delegation: k.Delegation, Amount: v})
		}
	}
	shares.Sort()
	return shares, nil
}

func (s *Store) GetPoolDelegationShare(id pos.PoolID, delegation pos.DelegationID) (amount.Amount, bool, error) {
	v, ok := s.v.Shares[pos.PoolDelegationKey{Pool: id, Delegation: delegation}]
	return v, ok, nil
}

func (s *Store) GetDelegationData(id pos.DelegationID) (*pos.DelegationData, error) {
	if d, ok := s.v.DelegationData[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *Store) GetDelegationBalance(id pos.DelegationID) (amount.Amount, bool, error) {
	v, ok := s.v.DelegationBalances[id]
	return v, ok, nil
}

func (s *Store) SetPoolData(id pos.PoolID, data pos.PoolData) error {
	s.v.PoolData[id] = data
	return nil
}

func (s *Store) DeletePoolData(id pos.PoolID) error {
	delete(s.v.PoolData, id)
	return nil
}

func (s *Store) SetPoolBalance(id pos.PoolID, balance amount.Amount) error {
	setAmount(s.v.PoolBalances, id, balance)
	return nil
}

func (s *Store) DeletePoolBalance(id pos.PoolID) error {
	delete(s.v.PoolBalances, id)
	return nil
}

func (s *Store) SetPoolDelegationShare(id pos.PoolID, delegation pos.DelegationID, share amount.Amount) error {
	setAmount(s.v.Shares, pos.PoolDelegationKey{Pool: id, Delegation: delegation}, share)
	return nil
}

func (s *Store) DeletePoolDelegationShare(id pos.PoolID, delegation pos.DelegationID) error {
	delete(s.v.Shares, pos.PoolDelegationKey{Pool: id, Delegation: delegation})
	return nil
}

func (s *Store) SetDelegationBalance(id pos.DelegationID, balance amount.Amount) error {
	setAmount(s.v.DelegationBalances, id, balance)
	return nil
}

func (s *Store) DeleteDelegationBalance(id pos.DelegationID) error {
	delete(s.v.DelegationBalances, id)
	return nil
}

func (s *Store) SetDelegationData(id pos.DelegationID, data pos.DelegationData) error {
	s.v.DelegationData[id] = data
	return nil
}

func (s *Store) DeleteDelegationData(id pos.DelegationID) error {
	delete(s.v.DelegationData, id)
	return nil
}

func setAmount[K comparable](m map[K]amount.Amount, k K, v amount.Amount) {
	if v.IsZero() {
		delete(m, k)
		return
	}
	m[k] = v
}
