// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounting

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDataDeltaContinuity is returned when a transition does not start from
// the state the previous transition of the same key ended in.
var ErrDataDeltaContinuity = errors.New("data delta continuity violated")

// Key is the constraint of collection keys. Keys are compared for
// deterministic iteration.
type Key[K any] interface {
	comparable
	Compare(other K) int
}

// DataDelta is a transition of a record from one state to another.
// A nil side means the record did not exist at that end.
type DataDelta[T comparable] struct {
	From *T
	To   *T
}

// NewDataDelta creates a transition.
func NewDataDelta[T comparable](from, to *T) DataDelta[T] {
	return DataDelta[T]{From: from, To: to}
}

// Some returns a pointer to a copy of v.
func Some[T any](v T) *T {
	return &v
}

// Inverse returns the transition that reverts d.
func (d DataDelta[T]) Inverse() DataDelta[T] {
	return DataDelta[T]{From: d.To, To: d.From}
}

// Equal returns whether both transitions carry the same states.
func (d DataDelta[T]) Equal(other DataDelta[T]) bool {
	return optEqual(d.From, other.From) && optEqual(d.To, other.To)
}

// IsNoop returns whether the transition has no observable effect.
func (d DataDelta[T]) IsNoop() bool {
	return optEqual(d.From, d.To)
}

// StartsAt returns whether the transition starts from state.
func (d DataDelta[T]) StartsAt(state *T) bool {
	return optEqual(d.From, state)
}

func (d DataDelta[T]) String() string {
	return fmt.Sprintf("(%v -> %v)", optString(d.From), optString(d.To))
}

// Then composes d with the following transition next.
// The result goes from d.From to next.To. It fails if next does not start
// where d ended.
func (d DataDelta[T]) Then(next DataDelta[T]) (DataDelta[T], error) {
	if !optEqual(d.To, next.From) {
		return DataDelta[T]{}, errors.Wrapf(ErrDataDeltaContinuity, "%v then %v", d, next)
	}
	return DataDelta[T]{From: d.From, To: next.To}, nil
}

func optEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func optString[T any](v *T) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%v", *v)
}
