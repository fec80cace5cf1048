// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"github.com/pkg/errors"

	"github.com/vechain/posledger/amount"
)

// DefaultMaxDepth is the default limit of stacked overlays above the base layer.
const DefaultMaxDepth = 64

type options struct {
	maxDepth int
}

// Option configures a Delta.
type Option func(*options)

// WithMaxDepth limits the number of overlays that can be stacked above the base layer.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// Delta is an overlay holding tentative changes on top of a parent view,
// which is either another Delta or the DB. Reads fall through to the parent
// for keys the overlay does not hold.
//
// A Delta is not safe for concurrent use.
type Delta struct {
	parent   View
	data     *DeltaData
	depth    int
	consumed bool
}

// NewDelta creates an empty overlay above parent.
func NewDelta(parent View, opts ...Option) (*Delta, error) {
	return NewDeltaFromData(parent, NewDeltaData(), opts...)
}

// NewDeltaFromData creates an overlay above parent owning data.
// The caller must not use data afterwards.
func NewDeltaFromData(parent View, data *DeltaData, opts ...Option) (*Delta, error) {
	if data == nil {
		return nil, ErrNilDelta
	}
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}

	depth := 1
	if p, ok := parent.(*Delta); ok {
		if p.consumed {
			return nil, ErrConsumed
		}
		depth = p.depth + 1
	}
	if depth > o.maxDepth {
		return nil, errors.WithMessagef(ErrChainTooDeep, "depth %d, limit %d", depth, o.maxDepth)
	}
	metricsHandleNewDelta(depth)
	return &Delta{
		parent: parent,
		data:   data,
		depth:  depth,
	}, nil
}

// Depth returns the number of overlays from the base layer up to d, inclusive.
func (d *Delta) Depth() int { return d.depth }

// Parent returns the parent view.
func (d *Delta) Parent() View { return d.parent }

// Data returns the owned aggregate, nil once consumed. It must not be modified.
func (d *Delta) Data() *DeltaData {
	if d.consumed {
		return nil
	}
	return d.data
}

// Consume detaches the owned aggregate. The overlay is unusable afterwards.
func (d *Delta) Consume() (*DeltaData, error) {
	if d.consumed {
		return nil, ErrConsumed
	}
	data := d.data
	d.data = nil
	d.consumed = true
	return data, nil
}

// MergeWithDelta merges other into the owned aggregate and returns the undo
// to revert it. On error the overlay is left as it was.
func (d *Delta) MergeWithDelta(other *DeltaData) (*DeltaMergeUndo, error) {
	if d.consumed {
		return nil, ErrConsumed
	}
	if other == nil {
		return nil, ErrNilDelta
	}
	undo, err := d.data.merge(other)
	metricsHandleMerge(layerDelta, other.KeyCount(), err)
	if err != nil {
		return nil, errors.WithMessage(err, "merge delta")
	}
	logger.Debug("merged delta", "depth", d.depth, "keys", other.KeyCount(), "total", d.data.KeyCount())
	return undo, nil
}

// UndoDeltaMerge reverts the merge that returned undo. It must be applied to
// the same overlay, once, and in reverse order of merges.
func (d *Delta) UndoDeltaMerge(undo *DeltaMergeUndo) error {
	if d.consumed {
		return ErrConsumed
	}
	if undo == nil {
		return ErrNilDelta
	}
	err := d.data.undo(undo)
	metricsHandleUndo(layerDelta, err)
	if err != nil {
		return errors.WithMessage(err, "undo delta merge")
	}
	logger.Debug("reverted delta merge", "depth", d.depth, "keys", undo.KeyCount())
	return nil
}

// GetPoolData implements View.
func (d *Delta) GetPoolData(id PoolID) (*PoolData, error) {
	if d.consumed {
		return nil, ErrConsumed
	}
	if delta, ok := d.data.PoolData.Get(id); ok {
		return copyOf(delta.To), nil
	}
	return d.parent.GetPoolData(id)
}

// GetPoolBalance implements View.
func (d *Delta) GetPoolBalance(id PoolID) (amount.Amount, bool, error) {
	if d.consumed {
		return amount.Zero, false, ErrConsumed
	}
	base, _, err := d.parent.GetPoolBalance(id)
	if err != nil {
		return amount.Zero, false, err
	}
	return resolveAmount(base, d.data.PoolBalances, id)
}

// GetPoolDelegationShares implements View.
func (d *Delta) GetPoolDelegationShares(id PoolID) (DelegationShares, error) {
	if d.consumed {
		return nil, ErrConsumed
	}
	base, err := d.parent.GetPoolDelegationShares(id)
	if err != nil {
		return nil, err
	}

	resolved := make(map[DelegationID]amount.Amount, len(base))
	for _, s := range base {
		resolved[s.Delegation] = s.Amount
	}

	var rerr error
	d.data.PoolDelegationShares.Range(func(k PoolDelegationKey, change amount.SignedAmount) bool {
		if k.Pool != id {
			return true
		}
		v, ok, err := addChange(resolved[k.Delegation], change)
		if err != nil {
			rerr = errors.WithMessagef(err, "share %v", k)
			return false
		}
		if ok {
			resolved[k.Delegation] = v
		} else {
			delete(resolved, k.Delegation)
		}
		return true
	})
	if rerr != nil {
		return nil, rerr
	}

	if len(resolved) == 0 {
		return nil, nil
	}
	shares := make(DelegationShares, 0, len(resolved))
	for delegation, v := range resolved {
		shares = append(shares, DelegationShare{Delegation: delegation, Amount: v})
	}
	shares.Sort()
	return shares, nil
}

// GetPoolDelegationShare implements View.
func (d *Delta) GetPoolDelegationShare(id PoolID, delegation DelegationID) (amount.Amount, bool, error) {
	if d.consumed {
		return amount.Zero, false, ErrConsumed
	}
	base, _, err := d.parent.GetPoolDelegationShare(id, delegation)
	if err != nil {
		return amount.Zero, false, err
	}
	return resolveAmount(base, d.data.PoolDelegationShares, PoolDelegationKey{Pool: id, Delegation: delegation})
}

// GetDelegationData implements View.
func (d *Delta) GetDelegationData(id DelegationID) (*DelegationData, error) {
	if d.consumed {
		return nil, ErrConsumed
	}
	if delta, ok := d.data.DelegationData.Get(id); ok {
		return copyOf(delta.To), nil
	}
	return d.parent.GetDelegationData(id)
}

// GetDelegationBalance implements View.
func (d *Delta) GetDelegationBalance(id DelegationID) (amount.Amount, bool, error) {
	if d.consumed {
		return amount.Zero, false, ErrConsumed
	}
	base, _, err := d.parent.GetDelegationBalance(id)
	if err != nil {
		return amount.Zero, false, err
	}
	return resolveAmount(base, d.data.DelegationBalances, id)
}

type amountGetter[K any] interface {
	Get(K) (amount.SignedAmount, bool)
}

func resolveAmount[K any](base amount.Amount, changes amountGetter[K], key K) (amount.Amount, bool, error) {
	change, ok := changes.Get(key)
	if !ok {
		return base, !base.IsZero(), nil
	}
	v, ok, err := addChange(base, change)
	if err != nil {
		return amount.Zero, false, errors.WithMessagef(err, "key %v", key)
	}
	return v, ok, nil
}

// addChange applies change to base. A zero result is reported as absent.
func addChange(base amount.Amount, change amount.SignedAmount) (amount.Amount, bool, error) {
	sum, err := base.ToSigned().Add(change)
	if err != nil {
		return amount.Zero, false, err
	}
	if sum.IsNegative() {
		return amount.Zero, false, errors.WithMessagef(ErrNegativeBalance, "%v %v", base, change)
	}
	v, err := sum.ToAmount()
	if err != nil {
		return amount.Zero, false, err
	}
	return v, !v.IsZero(), nil
}

func copyOf[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
