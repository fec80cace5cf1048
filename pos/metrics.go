// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pos

import (
	"github.com/vechain/posledger/log"
	"github.com/vechain/posledger/metrics"
)

var logger = log.WithContext("pkg", "pos")

var (
	metricMergeCount = metrics.LazyLoadCounterVec("pos_merge_count", []string{"layer", "result"})
	metricUndoCount  = metrics.LazyLoadCounterVec("pos_undo_count", []string{"layer", "result"})
	metricMergedKeys = metrics.LazyLoadHistogramVec("pos_merged_keys", []string{"layer"}, metrics.BucketKeys)
	metricDeltaDepth = metrics.LazyLoadGauge("pos_delta_depth")
)

const (
	layerDelta = "delta"
	layerDB    = "db"
)

func metricsHandleMerge(layer string, keys int, err error) {
	if metrics.NoOp() {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	metricMergeCount().AddWithLabel(1, map[string]string{"layer": layer, "result": result})
	if err == nil {
		metricMergedKeys().ObserveWithLabels(int64(keys), map[string]string{"layer": layer})
	}
}

func metricsHandleUndo(layer string, err error) {
	if metrics.NoOp() {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	metricUndoCount().AddWithLabel(1, map[string]string{"layer": layer, "result": result})
}

// metricsHandleNewDelta records the depth of the newest overlay.
func metricsHandleNewDelta(depth int) {
	if metrics.NoOp() {
		return
	}
	metricDeltaDepth().Set(int64(depth))
}
