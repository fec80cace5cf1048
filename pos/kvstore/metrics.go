// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kvstore

import (
	"fmt"
	"time"

	"github.com/vechain/posledger/log"
	"github.com/vechain/posledger/metrics"
)

var logger = log.WithContext("pkg", "kvstore")

var (
	metricCacheHitMiss  = metrics.LazyLoadGaugeVec("kvstore_cache_hit_miss", []string{"event"})
	metricCommitKeys    = metrics.LazyLoadHistogram("kvstore_commit_keys", metrics.BucketKeys)
	metricCommitted     = metrics.LazyLoadCounter("kvstore_committed_keys")
	metricCommitLatency = metrics.LazyLoadHistogram("kvstore_commit_latency_ms", metrics.BucketMillis)
)

const statsInterval = 20 * time.Second

// logCacheStats reports cache stats at most once per statsInterval.
func (s *Store) logCacheStats() {
	now := time.Now().UnixNano()
	last := s.lastLogTime.Swap(now)

	if now-last > int64(statsInterval) {
		counts, changed := s.cache.Stats().Report()
		// log only when the hit rate has changed, to avoid too many logs.
		if changed {
			logger.Debug("cache stats", "hit", counts.Hit, "miss", counts.Miss, "hitrate", fmt.Sprintf("%.3f", counts.HitRate()))
		}
		metricCacheHitMiss().SetWithLabel(counts.Hit, map[string]string{"event": "hit"})
		metricCacheHitMiss().SetWithLabel(counts.Miss, map[string]string{"event": "miss"})
	} else {
		s.lastLogTime.CompareAndSwap(now, last)
	}
}

func metricsHandleCommit(keys int, start time.Time) {
	if metrics.NoOp() {
		return
	}
	metricCommitKeys().Observe(int64(keys))
	metricCommitted().Add(int64(keys))
	metricCommitLatency().Observe(time.Since(start).Milliseconds())
}
