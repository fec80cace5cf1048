// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// PoolID identifies a staking pool.
type PoolID [32]byte

// DelegationID identifies a delegation.
type DelegationID [32]byte

// PoolDelegationKey keys the share a delegation holds in a pool.
type PoolDelegationKey struct {
	Pool       PoolID
	Delegation DelegationID
}

var (
	poolIDTag       = []byte("pos.pool")
	delegationIDTag = []byte("pos.delegation")
)

// DerivePoolID derives the id of a pool created from the given seed, usually
// the serialized outpoint the pool is funded from.
func DerivePoolID(seed []byte) PoolID {
	return PoolID(derive(poolIDTag, seed))
}

// DeriveDelegationID derives the id of a delegation created from the given seed.
func DeriveDelegationID(seed []byte) DelegationID {
	return DelegationID(derive(delegationIDTag, seed))
}

func derive(tag, seed []byte) [32]byte {
	h, _ := blake2b.New256(nil)
	h.Write(tag)
	h.Write(seed)
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// BytesToPoolID converts bytes into a PoolID, left-padding or cropping from the left.
func BytesToPoolID(b []byte) PoolID {
	return PoolID(common.BytesToHash(b))
}

// BytesToDelegationID converts bytes into a DelegationID, left-padding or cropping from the left.
func BytesToDelegationID(b []byte) DelegationID {
	return DelegationID(common.BytesToHash(b))
}

// ParsePoolID parses a hex string, with or without 0x prefix.
func ParsePoolID(s string) (PoolID, error) {
	b, err := parseBytes32(s)
	return PoolID(b), err
}

// ParseDelegationID parses a hex string, with or without 0x prefix.
func ParseDelegationID(s string) (DelegationID, error) {
	b, err := parseBytes32(s)
	return DelegationID(b), err
}

// MustParsePoolID is like ParsePoolID but panics on error.
func MustParsePoolID(s string) PoolID {
	id, err := ParsePoolID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// MustParseDelegationID is like ParseDelegationID but panics on error.
func MustParseDelegationID(s string) DelegationID {
	id, err := ParseDelegationID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func parseBytes32(s string) ([32]byte, error) {
	if len(s) == 32*2+2 {
		if strings.ToLower(s[:2]) != "0x" {
			return [32]byte{}, errors.New("invalid prefix")
		}
		s = s[2:]
	} else if len(s) != 32*2 {
		return [32]byte{}, errors.New("invalid length")
	}

	var b [32]byte
	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return [32]byte{}, err
	}
	return b, nil
}

// String implements fmt.Stringer.
func (id PoolID) String() string { return "0x" + hex.EncodeToString(id[:]) }

// AbbrevString returns the abbreviated form used in logs.
func (id PoolID) AbbrevString() string { return fmt.Sprintf("0x%x…%x", id[:4], id[28:]) }

// Bytes returns the id as byte slice.
func (id PoolID) Bytes() []byte { return id[:] }

// Compare orders ids by their bytes.
func (id PoolID) Compare(other PoolID) int { return bytes.Compare(id[:], other[:]) }

// MarshalText implements encoding.TextMarshaler.
func (id PoolID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *PoolID) UnmarshalText(text []byte) error {
	parsed, err := ParsePoolID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// String implements fmt.Stringer.
func (id DelegationID) String() string { return "0x" + hex.EncodeToString(id[:]) }

// AbbrevString returns the abbreviated form used in logs.
func (id DelegationID) AbbrevString() string { return fmt.Sprintf("0x%x…%x", id[:4], id[28:]) }

// Bytes returns the id as byte slice.
func (id DelegationID) Bytes() []byte { return id[:] }

// Compare orders ids by their bytes.
func (id DelegationID) Compare(other DelegationID) int { return bytes.Compare(id[:], other[:]) }

// MarshalText implements encoding.TextMarshaler.
func (id DelegationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *DelegationID) UnmarshalText(text []byte) error {
	parsed, err := ParseDelegationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Compare orders keys by pool first, then by delegation.
func (k PoolDelegationKey) Compare(other PoolDelegationKey) int {
	if c := k.Pool.Compare(other.Pool); c != 0 {
		return c
	}
	return k.Delegation.Compare(other.Delegation)
}

func (k PoolDelegationKey) String() string {
	return fmt.Sprintf("(%v, %v)", k.Pool.AbbrevString(), k.Delegation.AbbrevString())
}
