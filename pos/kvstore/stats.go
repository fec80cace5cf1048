// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kvstore

import (
	"context"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/posledger/amount"
	"github.com/vechain/posledger/kv"
)

// BucketStats summarizes one collection.
type BucketStats struct {
	Records int
	// Total is the sum of the balances, zero for data collections.
	Total amount.Amount
}

// Stats summarizes the committed content of a Store.
type Stats struct {
	PoolData             BucketStats
	PoolBalances         BucketStats
	PoolDelegationShares BucketStats
	DelegationBalances   BucketStats
	DelegationData       BucketStats
}

// Stats scans every collection of the committed store, one goroutine per
// collection. Staged batch writes are not included.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range []struct {
		bucket  kv.Bucket
		out     *BucketStats
		amounts bool
	}{
		{poolDataBucket, &st.PoolData, false},
		{poolBalanceBucket, &st.PoolBalances, true},
		{shareBucket, &st.PoolDelegationShares, true},
		{delegationBalanceBucket, &st.DelegationBalances, true},
		{delegationDataBucket, &st.DelegationData, false},
	} {
		g.Go(func() error {
			return scanBucket(gctx, s.store, b.bucket, b.out, b.amounts)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

func scanBucket(ctx context.Context, store kv.Store, bucket kv.Bucket, out *BucketStats, amounts bool) error {
	var outErr error
	err := store.Iterate(bucket.Range(kv.Range{}), func(pair kv.Pair) bool {
		if outErr = ctx.Err(); outErr != nil {
			return false
		}
		out.Records++
		if !amounts {
			return true
		}
		var v amount.Amount
		if outErr = rlp.DecodeBytes(pair.Value(), &v); outErr != nil {
			outErr = errors.Wrapf(outErr, "decode %x", pair.Key())
			return false
		}
		out.Total, outErr = out.Total.Add(v)
		return outErr == nil
	})
	if err == nil {
		err = outErr
	}
	return errors.WithMessagef(err, "scan %q", string(bucket))
}
