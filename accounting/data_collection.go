// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounting

import (
	"slices"

	"github.com/pkg/errors"
)

// DeltaDataCollection maps keys to transitions.
type DeltaDataCollection[K Key[K], T comparable] struct {
	data map[K]DataDelta[T]
}

// DataDeltaUndoCollection holds, per key, the inverse of the transition
// applied by a merge.
type DataDeltaUndoCollection[K Key[K], T comparable] struct {
	data map[K]DataDelta[T]
}

// NewDeltaDataCollection creates an empty collection.
func NewDeltaDataCollection[K Key[K], T comparable]() *DeltaDataCollection[K, T] {
	return &DeltaDataCollection[K, T]{data: make(map[K]DataDelta[T])}
}

// DeltaDataCollectionFrom creates a collection holding the given transitions.
func DeltaDataCollectionFrom[K Key[K], T comparable](m map[K]DataDelta[T]) *DeltaDataCollection[K, T] {
	c := NewDeltaDataCollection[K, T]()
	for k, d := range m {
		c.data[k] = d
	}
	return c
}

// Len returns the number of touched keys, including no-op slots.
func (c *DeltaDataCollection[K, T]) Len() int {
	return len(c.data)
}

// Get returns the transition recorded for key.
func (c *DeltaDataCollection[K, T]) Get(key K) (DataDelta[T], bool) {
	d, ok := c.data[key]
	return d, ok
}

// Keys returns the touched keys in ascending order.
func (c *DeltaDataCollection[K, T]) Keys() []K {
	return sortedKeys(c.data)
}

// Range calls fn for each slot in key order until fn returns false.
func (c *DeltaDataCollection[K, T]) Range(fn func(K, DataDelta[T]) bool) {
	for _, k := range c.Keys() {
		if !fn(k, c.data[k]) {
			return
		}
	}
}

// MergeDelta composes a single transition into the slot of key and returns
// the inverse transition to revert it.
func (c *DeltaDataCollection[K, T]) MergeDelta(key K, delta DataDelta[T]) (DataDelta[T], error) {
	merged, err := c.combine(key, delta)
	if err != nil {
		return DataDelta[T]{}, err
	}
	c.data[key] = merged
	return delta.Inverse(), nil
}

// Merge composes every transition of other into c. Either all keys are
// merged or, on error, c is left untouched.
func (c *DeltaDataCollection[K, T]) Merge(other *DeltaDataCollection[K, T]) (*DataDeltaUndoCollection[K, T], error) {
	keys := other.Keys()
	staged := make([]DataDelta[T], len(keys))
	for i, k := range keys {
		merged, err := c.combine(k, other.data[k])
		if err != nil {
			return nil, err
		}
		staged[i] = merged
	}

	undo := NewDataDeltaUndoCollection[K, T]()
	for i, k := range keys {
		c.data[k] = staged[i]
		undo.data[k] = other.data[k].Inverse()
	}
	return undo, nil
}

// CheckMerge reports the error Merge would return, without modifying c.
func (c *DeltaDataCollection[K, T]) CheckMerge(other *DeltaDataCollection[K, T]) error {
	for _, k := range other.Keys() {
		if _, err := c.combine(k, other.data[k]); err != nil {
			return err
		}
	}
	return nil
}

// Undo reverts a previous merge using its undo collection. Each inverse is
// composed into the slot, so a key created by the merge ends as a no-op slot.
func (c *DeltaDataCollection[K, T]) Undo(undo *DataDeltaUndoCollection[K, T]) error {
	keys := undo.Keys()
	staged := make([]DataDelta[T], len(keys))
	for i, k := range keys {
		reverted, err := c.combine(k, undo.data[k])
		if err != nil {
			return errors.Wrap(err, "undo")
		}
		staged[i] = reverted
	}
	for i, k := range keys {
		c.data[k] = staged[i]
	}
	return nil
}

func (c *DeltaDataCollection[K, T]) combine(key K, delta DataDelta[T]) (DataDelta[T], error) {
	current, ok := c.data[key]
	if !ok {
		return delta, nil
	}
	merged, err := current.Then(delta)
	if err != nil {
		return DataDelta[T]{}, errors.WithMessagef(err, "key %v", key)
	}
	return merged, nil
}

// Clone returns a copy of the collection. Records are shared since
// transitions never mutate the states they point to.
func (c *DeltaDataCollection[K, T]) Clone() *DeltaDataCollection[K, T] {
	return DeltaDataCollectionFrom(c.data)
}

// Equal returns whether both collections hold the same slots.
func (c *DeltaDataCollection[K, T]) Equal(other *DeltaDataCollection[K, T]) bool {
	if len(c.data) != len(other.data) {
		return false
	}
	for k, d := range c.data {
		o, ok := other.data[k]
		if !ok || !d.Equal(o) {
			return false
		}
	}
	return true
}

// NewDataDeltaUndoCollection creates an empty undo collection.
func NewDataDeltaUndoCollection[K Key[K], T comparable]() *DataDeltaUndoCollection[K, T] {
	return &DataDeltaUndoCollection[K, T]{data: make(map[K]DataDelta[T])}
}

// Set records the inverse transition of key.
func (u *DataDeltaUndoCollection[K, T]) Set(key K, inverse DataDelta[T]) {
	u.data[key] = inverse
}

// Get returns the inverse transition recorded for key.
func (u *DataDeltaUndoCollection[K, T]) Get(key K) (DataDelta[T], bool) {
	d, ok := u.data[key]
	return d, ok
}

// Len returns the number of recorded keys.
func (u *DataDeltaUndoCollection[K, T]) Len() int {
	return len(u.data)
}

// Keys returns the recorded keys in ascending order.
func (u *DataDeltaUndoCollection[K, T]) Keys() []K {
	return sortedKeys(u.data)
}

func sortedKeys[K Key[K], V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int { return a.Compare(b) })
	return keys
}
