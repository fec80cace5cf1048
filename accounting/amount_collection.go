// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounting

import (
	"github.com/pkg/errors"

	"github.com/vechain/posledger/amount"
)

// DeltaAmountCollection maps keys to signed amount changes. Keys whose
// accumulated change is zero are not kept.
type DeltaAmountCollection[K Key[K]] struct {
	data map[K]amount.SignedAmount
}

// DeltaAmountUndoCollection holds, per key, the amount added by a merge.
type DeltaAmountUndoCollection[K Key[K]] struct {
	data map[K]amount.SignedAmount
}

// NewDeltaAmountCollection creates an empty collection.
func NewDeltaAmountCollection[K Key[K]]() *DeltaAmountCollection[K] {
	return &DeltaAmountCollection[K]{data: make(map[K]amount.SignedAmount)}
}

// DeltaAmountCollectionFrom creates a collection holding the given changes.
// Zero changes are dropped.
func DeltaAmountCollectionFrom[K Key[K]](m map[K]amount.SignedAmount) *DeltaAmountCollection[K] {
	c := NewDeltaAmountCollection[K]()
	for k, v := range m {
		if !v.IsZero() {
			c.data[k] = v
		}
	}
	return c
}

// Len returns the number of keys with a non-zero change.
func (c *DeltaAmountCollection[K]) Len() int {
	return len(c.data)
}

// Get returns the change recorded for key.
func (c *DeltaAmountCollection[K]) Get(key K) (amount.SignedAmount, bool) {
	v, ok := c.data[key]
	return v, ok
}

// Keys returns the keys in ascending order.
func (c *DeltaAmountCollection[K]) Keys() []K {
	return sortedKeys(c.data)
}

// Range calls fn for each change in key order until fn returns false.
func (c *DeltaAmountCollection[K]) Range(fn func(K, amount.SignedAmount) bool) {
	for _, k := range c.Keys() {
		if !fn(k, c.data[k]) {
			return
		}
	}
}

// Add accumulates delta into the change of key.
func (c *DeltaAmountCollection[K]) Add(key K, delta amount.SignedAmount) error {
	sum, err := c.sum(key, delta)
	if err != nil {
		return err
	}
	c.put(key, sum)
	return nil
}

// Merge adds every change of other into c. Either all keys are merged or,
// on error, c is left untouched.
func (c *DeltaAmountCollection[K]) Merge(other *DeltaAmountCollection[K]) (*DeltaAmountUndoCollection[K], error) {
	keys := other.Keys()
	staged := make([]amount.SignedAmount, len(keys))
	for i, k := range keys {
		sum, err := c.sum(k, other.data[k])
		if err != nil {
			return nil, err
		}
		staged[i] = sum
	}

	undo := NewDeltaAmountUndoCollection[K]()
	for i, k := range keys {
		c.put(k, staged[i])
		undo.data[k] = other.data[k]
	}
	return undo, nil
}

// Undo reverts a previous merge by subtracting every recorded amount.
func (c *DeltaAmountCollection[K]) Undo(undo *DeltaAmountUndoCollection[K]) error {
	keys := undo.Keys()
	staged := make([]amount.SignedAmount, len(keys))
	for i, k := range keys {
		sum, err := c.sum(k, undo.data[k].Neg())
		if err != nil {
			return errors.Wrap(err, "undo")
		}
		staged[i] = sum
	}
	for i, k := range keys {
		c.put(k, staged[i])
	}
	return nil
}

func (c *DeltaAmountCollection[K]) sum(key K, delta amount.SignedAmount) (amount.SignedAmount, error) {
	sum, err := c.data[key].Add(delta)
	if err != nil {
		return amount.SignedAmount{}, errors.WithMessagef(err, "key %v", key)
	}
	return sum, nil
}

func (c *DeltaAmountCollection[K]) put(key K, v amount.SignedAmount) {
	if v.IsZero() {
		delete(c.data, key)
	} else {
		c.data[key] = v
	}
}

// Clone returns a copy of the collection.
func (c *DeltaAmountCollection[K]) Clone() *DeltaAmountCollection[K] {
	return DeltaAmountCollectionFrom(c.data)
}

// Equal returns whether both collections hold the same changes.
func (c *DeltaAmountCollection[K]) Equal(other *DeltaAmountCollection[K]) bool {
	if len(c.data) != len(other.data) {
		return false
	}
	for k, v := range c.data {
		if o, ok := other.data[k]; !ok || o != v {
			return false
		}
	}
	return true
}

// NewDeltaAmountUndoCollection creates an empty undo collection.
func NewDeltaAmountUndoCollection[K Key[K]]() *DeltaAmountUndoCollection[K] {
	return &DeltaAmountUndoCollection[K]{data: make(map[K]amount.SignedAmount)}
}

// Set records the amount that was added for key.
func (u *DeltaAmountUndoCollection[K]) Set(key K, added amount.SignedAmount) {
	u.data[key] = added
}

// Get returns the amount that was added for key.
func (u *DeltaAmountUndoCollection[K]) Get(key K) (amount.SignedAmount, bool) {
	v, ok := u.data[key]
	return v, ok
}

// Len returns the number of recorded keys.
func (u *DeltaAmountUndoCollection[K]) Len() int {
	return len(u.data)
}

// Keys returns the recorded keys in ascending order.
func (u *DeltaAmountUndoCollection[K]) Keys() []K {
	return sortedKeys(u.data)
}
