// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runs before any test initializes prometheus
func TestNoopMetrics(t *testing.T) {
	require.True(t, NoOp())

	labels := map[string]string{"layer": "delta", "result": "ok"}
	Counter("merges").Add(1)
	CounterVec("merges_vec", []string{"layer", "result"}).AddWithLabel(1, labels)
	Histogram("keys", BucketKeys).Observe(12)
	HistogramVec("keys_vec", []string{"layer"}, BucketKeys).ObserveWithLabels(12, map[string]string{"unknown": "label"})
	Gauge("cache").Set(3)
	GaugeVec("cache_vec", []string{"event"}).SetWithLabel(3, map[string]string{"event": "hit"})

	lazy := LazyLoadCounterVec("lazy_vec", []string{"layer"})
	assert.Equal(t, noopMetric, lazy())

	// disk usage collectors stay unregistered
	RegisterDiskUsage("ledger", t.TempDir())
	_, ok := diskCollectors.Load("ledger")
	assert.False(t, ok)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, WriteTextfile(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
