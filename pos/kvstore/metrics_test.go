// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kvstore

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/posledger/amount"
	"github.com/vechain/posledger/metrics"
)

func gatherCounter(t *testing.T, name string) float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.Metric[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestCommitMetrics(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	const name = "posledger_metrics_kvstore_committed_keys"

	s := newStore(t, backends[0], 0)
	before := gatherCounter(t, name)

	batch := s.NewBatch()
	require.NoError(t, batch.SetPoolBalance(poolID(1), amount.FromAtoms(1)))
	require.NoError(t, batch.SetDelegationBalance(delegationID(1), amount.FromAtoms(2)))
	require.NoError(t, batch.PutRaw([]byte("aux/1"), []byte("one")))
	require.NoError(t, batch.Commit())

	assert.Equal(t, before+3, gatherCounter(t, name))

	// an empty commit counts nothing
	require.NoError(t, s.NewBatch().Commit())
	assert.Equal(t, before+3, gatherCounter(t, name))
}
