// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accounting implements the reversible delta algebra used by the
// layered pool accounting.
//
// Two kinds of per-key change are supported:
//
//	DataDelta          (from, to) transition of an opaque record
//	SignedAmount       accumulated change of a balance
//
// Merging a collection into another returns an undo collection which, when
// applied to the merged result, restores the exact previous content:
//
//	[ collection ] --merge(other)--> [ collection' ] + undo
//	[ collection' ] --undo--> [ collection ]
//
// Data slots are never removed once touched. A transition that cancels out
// stays in the collection as a no-op (nil, nil) slot. Amount slots that sum to
// zero are pruned, while the undo collection still remembers every amount
// that was added.
package accounting
