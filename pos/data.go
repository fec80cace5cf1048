// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/vechain/posledger/amount"
)

// PublicKey is a compressed secp256k1 public key.
type PublicKey [secp256k1.PubKeyBytesLenCompressed]byte

// NewPublicKey converts a secp256k1 public key.
func NewPublicKey(key *secp256k1.PublicKey) PublicKey {
	var pk PublicKey
	copy(pk[:], key.SerializeCompressed())
	return pk
}

// ParsePublicKey parses a serialized key in compressed or uncompressed form.
func ParsePublicKey(b []byte) (PublicKey, error) {
	key, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "parse public key")
	}
	return NewPublicKey(key), nil
}

// Key returns the decoded secp256k1 key.
func (pk PublicKey) Key() (*secp256k1.PublicKey, error) {
	return secp256k1.ParsePubKey(pk[:])
}

func (pk PublicKey) String() string {
	return "0x" + hex.EncodeToString(pk[:])
}

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) { return []byte(pk.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrap(err, "parse public key")
	}
	parsed, err := ParsePublicKey(b)
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// PoolData is the record of a staking pool.
type PoolData struct {
	DecommissionKey PublicKey
	Pledge          amount.Amount
}

// NewPoolData creates a pool record.
func NewPoolData(decommissionKey PublicKey, pledge amount.Amount) PoolData {
	return PoolData{DecommissionKey: decommissionKey, Pledge: pledge}
}

func (d PoolData) String() string {
	return fmt.Sprintf("pool(pledge=%v key=%v)", d.Pledge, d.DecommissionKey)
}

// DelegationData is the record of a delegation.
type DelegationData struct {
	Pool  PoolID
	Owner PublicKey
}

// NewDelegationData creates a delegation record.
func NewDelegationData(pool PoolID, owner PublicKey) DelegationData {
	return DelegationData{Pool: pool, Owner: owner}
}

func (d DelegationData) String() string {
	return fmt.Sprintf("delegation(pool=%v owner=%v)", d.Pool.AbbrevString(), d.Owner)
}
