// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import "github.com/pkg/errors"

var (
	// ErrConsumed is returned by a Delta whose aggregate was detached.
	ErrConsumed = errors.New("delta consumed")
	// ErrChainTooDeep is returned when stacking a Delta beyond the depth limit.
	ErrChainTooDeep = errors.New("delta chain too deep")
	// ErrNilDelta is returned when a nil aggregate or undo is passed in.
	ErrNilDelta = errors.New("nil delta")

	ErrPoolExists         = errors.New("pool already exists")
	ErrPoolNotFound       = errors.New("pool not found")
	ErrDelegationExists   = errors.New("delegation already exists")
	ErrDelegationNotFound = errors.New("delegation not found")

	// ErrNegativeBalance is returned when a balance resolved through the chain
	// would drop below zero.
	ErrNegativeBalance = errors.New("negative balance")
)
