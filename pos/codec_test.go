// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/posledger/accounting"
	"github.com/vechain/posledger/amount"
)

func testDeltaData(t *testing.T) *DeltaData {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	key := NewPublicKey(priv.PubKey())

	p1, p2 := BytesToPoolID([]byte{1}), BytesToPoolID([]byte{2})
	d1, d2 := BytesToDelegationID([]byte{1}), BytesToDelegationID([]byte{2})

	d := NewDeltaData()
	_, err = d.PoolData.MergeDelta(p2, accounting.NewDataDelta(nil, accounting.Some(NewPoolData(key, amount.FromAtoms(7)))))
	require.NoError(t, err)
	_, err = d.PoolData.MergeDelta(p1, accounting.NewDataDelta[PoolData](nil, nil))
	require.NoError(t, err)
	require.NoError(t, d.PoolBalances.Add(p1, amount.SignedFromAtoms(-3)))
	require.NoError(t, d.PoolBalances.Add(p2, amount.MaxAmount.ToSigned()))
	require.NoError(t, d.PoolDelegationShares.Add(PoolDelegationKey{p2, d1}, amount.SignedFromAtoms(5)))
	require.NoError(t, d.PoolDelegationShares.Add(PoolDelegationKey{p1, d2}, amount.SignedFromAtoms(6)))
	require.NoError(t, d.DelegationBalances.Add(d2, amount.SignedFromAtoms(11)))
	_, err = d.DelegationData.MergeDelta(d1, accounting.NewDataDelta(accounting.Some(NewDelegationData(p1, key)), nil))
	require.NoError(t, err)
	return d
}

func TestDeltaDataCodec(t *testing.T) {
	d := testDeltaData(t)

	enc, err := EncodeDeltaData(d)
	require.NoError(t, err)

	dec, err := DecodeDeltaData(enc)
	require.NoError(t, err)
	assert.True(t, d.Equal(dec))

	// deterministic regardless of map iteration
	again, err := EncodeDeltaData(dec)
	require.NoError(t, err)
	assert.Equal(t, enc, again)

	empty, err := EncodeDeltaData(NewDeltaData())
	require.NoError(t, err)
	dec, err = DecodeDeltaData(empty)
	require.NoError(t, err)
	assert.True(t, dec.IsEmpty())
}

func TestUndoCodec(t *testing.T) {
	target := NewDeltaData()
	require.NoError(t, target.DelegationBalances.Add(BytesToDelegationID([]byte{9}), amount.SignedFromAtoms(4)))
	before := target.Clone()

	undo, err := target.merge(testDeltaData(t))
	require.NoError(t, err)

	enc, err := EncodeUndo(undo)
	require.NoError(t, err)
	dec, err := DecodeUndo(enc)
	require.NoError(t, err)
	assert.Equal(t, undo, dec)

	require.NoError(t, target.undo(dec))
	assert.True(t, before.PoolBalances.Equal(target.PoolBalances))
	assert.True(t, before.PoolDelegationShares.Equal(target.PoolDelegationShares))
	assert.True(t, before.DelegationBalances.Equal(target.DelegationBalances))
	// keys created by the merge are left as no-op slots
	target.PoolData.Range(func(_ PoolID, d PoolDataDelta) bool {
		assert.True(t, d.IsNoop())
		return true
	})
	target.DelegationData.Range(func(_ DelegationID, d DelegationDataDelta) bool {
		assert.True(t, d.IsNoop())
		return true
	})
}

func TestDecodeRejectsUnorderedKeys(t *testing.T) {
	p1, p2 := BytesToPoolID([]byte{1}), BytesToPoolID([]byte{2})
	enc, err := rlp.EncodeToBytes(&deltaRLP{
		PoolBalances: []amountEntry[PoolID]{
			{Key: p2, Amount: amount.SignedFromAtoms(1)},
			{Key: p1, Amount: amount.SignedFromAtoms(1)},
		},
	})
	require.NoError(t, err)

	_, err = DecodeDeltaData(enc)
	assert.Error(t, err)
	_, err = DecodeUndo(enc)
	assert.Error(t, err)

	_, err = DecodeDeltaData([]byte{0x01})
	assert.Error(t, err)
}
